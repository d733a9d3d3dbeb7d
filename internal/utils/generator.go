package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"medexpenses/internal/models"
)

const maxFieldLen = 50

// Generator produces synthetic patients and users shaped like the insurance
// dataset. A zero seed gives a different run every time.
type Generator struct {
	faker *gofakeit.Faker
}

func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Patients returns n inputs with unique emails. The lookup id slices must
// not be empty.
func (g *Generator) Patients(n int, regions, smokers, sexes []uint) []models.PatientInput {
	out := make([]models.PatientInput, n)
	for i := range out {
		first := g.faker.FirstName()
		last := g.faker.LastName()
		out[i] = models.PatientInput{
			FirstName: first,
			LastName:  last,
			Age:       g.faker.IntRange(18, 64),
			BMI:       round2(g.faker.Float64Range(15.96, 53.13)),
			Email:     g.email(i, first, last),
			Children:  g.faker.IntRange(0, 5),
			Charges:   round2(g.faker.Float64Range(1121.87, 63770.43)),
			Region:    g.pick(regions),
			Smoker:    g.pick(smokers),
			Sex:       g.pick(sexes),
		}
	}
	return out
}

// Users returns n inputs with unique usernames and emails. Passwords are
// plaintext so they can be reported to the operator once.
func (g *Generator) Users(n int, roles []uint) []models.AppUserInput {
	out := make([]models.AppUserInput, n)
	for i := range out {
		username := truncate(fmt.Sprintf("%s%d", g.faker.Username(), i), maxFieldLen)
		out[i] = models.AppUserInput{
			Username: username,
			Password: g.faker.Password(true, true, true, true, false, 12),
			Email:    g.email(i, username, "user"),
			RoleID:   g.pick(roles),
		}
	}
	return out
}

// email ends the local part with the index so a batch never collides.
func (g *Generator) email(i int, a, b string) string {
	local := fmt.Sprintf("%s.%s.%d", slug(a), slug(b), i)
	domain := g.faker.DomainName()
	if len(local)+1+len(domain) > maxFieldLen {
		local = fmt.Sprintf("%s.%d", truncate(slug(a), 20), i)
		domain = "example.com"
	}
	return local + "@" + domain
}

func (g *Generator) pick(ids []uint) *uint {
	id := ids[g.faker.IntRange(0, len(ids)-1)]
	return &id
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
