package utils

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"medexpenses/internal/apperr"
	"medexpenses/internal/models"
	"medexpenses/internal/services"
)

const DefaultWorkers = 4

var (
	PatientColumns = []string{"age", "sex", "bmi", "children", "smoker", "region", "charges", "first_name", "last_name", "patient_email"}
	UserColumns    = []string{"username", "password", "user_email", "role_name"}
)

// RowError ties a failure to the source line that produced it.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e RowError) Unwrap() error { return e.Err }

type Report struct {
	Total    int
	Imported int
	Failed   []RowError
}

// Seeder writes rows through the services so every record is validated and
// encrypted exactly as an API call would do it.
type Seeder struct {
	patients services.PatientService
	users    services.UserService
	workers  int
}

func NewSeeder(patients services.PatientService, users services.UserService, workers int) *Seeder {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Seeder{patients: patients, users: users, workers: workers}
}

// ImportPatients creates one patient per record. Rows that fail parsing or
// creation are reported and skipped; the error return is reserved for
// failures that stop the whole import.
func (s *Seeder) ImportPatients(ctx context.Context, t *Table) (*Report, error) {
	if err := t.Require(PatientColumns...); err != nil {
		return nil, err
	}
	idx, err := s.patientIndex(ctx)
	if err != nil {
		return nil, err
	}

	var (
		inputs []models.PatientInput
		lines  []int
		failed []RowError
	)
	for i, rec := range t.Records {
		in, err := idx.patient(rec)
		if err != nil {
			failed = append(failed, RowError{Line: t.Line(i), Err: err})
			continue
		}
		inputs = append(inputs, in)
		lines = append(lines, t.Line(i))
	}

	report, err := s.CreatePatients(ctx, inputs, lines)
	report.Total += len(failed)
	report.Failed = mergeFailures(report.Failed, failed)
	return report, err
}

func (s *Seeder) ImportUsers(ctx context.Context, t *Table) (*Report, error) {
	if err := t.Require(UserColumns...); err != nil {
		return nil, err
	}
	roles, err := s.users.Roles(ctx)
	if err != nil {
		return nil, err
	}
	roleIDs := make(map[string]uint, len(roles))
	for _, r := range roles {
		roleIDs[strings.ToLower(r.RoleName)] = r.ID
	}

	var (
		inputs []models.AppUserInput
		lines  []int
		failed []RowError
	)
	for i, rec := range t.Records {
		in, err := parseUser(rec, roleIDs)
		if err != nil {
			failed = append(failed, RowError{Line: t.Line(i), Err: err})
			continue
		}
		inputs = append(inputs, in)
		lines = append(lines, t.Line(i))
	}

	report, err := s.CreateUsers(ctx, inputs, lines)
	report.Total += len(failed)
	report.Failed = mergeFailures(report.Failed, failed)
	return report, err
}

// CreatePatients stores the inputs on the worker pool. lines labels each
// input in the report; nil numbers them from 1.
func (s *Seeder) CreatePatients(ctx context.Context, inputs []models.PatientInput, lines []int) (*Report, error) {
	return s.run(ctx, numbered(len(inputs), lines), func(ctx context.Context, i int) error {
		_, err := s.patients.Create(ctx, inputs[i])
		return err
	})
}

func (s *Seeder) CreateUsers(ctx context.Context, inputs []models.AppUserInput, lines []int) (*Report, error) {
	return s.run(ctx, numbered(len(inputs), lines), func(ctx context.Context, i int) error {
		_, err := s.users.Create(ctx, inputs[i])
		return err
	})
}

// run fans the jobs out to a fixed number of workers. Cancelling ctx stops
// dispatch; jobs already taken by a worker finish.
func (s *Seeder) run(ctx context.Context, lines []int, fn func(context.Context, int) error) (*Report, error) {
	report := &Report{Total: len(lines)}
	jobs := make(chan int)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				err := fn(ctx, i)

				mu.Lock()
				if err != nil {
					report.Failed = append(report.Failed, RowError{Line: lines[i], Err: err})
				} else {
					report.Imported++
					if report.Imported%500 == 0 {
						log.Info().Int("imported", report.Imported).Int("total", report.Total).Msg("Seeding progress")
					}
				}
				mu.Unlock()
			}
		}()
	}

	var err error
dispatch:
	for i := range lines {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	sortFailures(report.Failed)
	return report, err
}

type patientIndex struct {
	regions map[string]uint
	smokers map[string]uint
	sexes   map[string]uint
}

func (s *Seeder) patientIndex(ctx context.Context) (*patientIndex, error) {
	regions, err := s.patients.Regions(ctx)
	if err != nil {
		return nil, err
	}
	smokers, err := s.patients.Smokers(ctx)
	if err != nil {
		return nil, err
	}
	sexes, err := s.patients.Sexes(ctx)
	if err != nil {
		return nil, err
	}

	idx := &patientIndex{
		regions: make(map[string]uint, len(regions)),
		smokers: make(map[string]uint, len(smokers)),
		sexes:   make(map[string]uint, len(sexes)),
	}
	for _, r := range regions {
		idx.regions[strings.ToLower(r.RegionName)] = r.ID
	}
	for _, sm := range smokers {
		idx.smokers[strings.ToLower(sm.IsSmoker)] = sm.ID
	}
	for _, sx := range sexes {
		idx.sexes[strings.ToLower(sx.SexLabel)] = sx.ID
	}
	return idx, nil
}

func (idx *patientIndex) patient(rec Record) (models.PatientInput, error) {
	var in models.PatientInput
	var err error

	if in.Age, err = atoi(rec, "age"); err != nil {
		return in, err
	}
	if in.BMI, err = atof(rec, "bmi"); err != nil {
		return in, err
	}
	if in.Children, err = atoi(rec, "children"); err != nil {
		return in, err
	}
	if in.Charges, err = atof(rec, "charges"); err != nil {
		return in, err
	}
	if in.Region, err = label(idx.regions, rec, "region"); err != nil {
		return in, err
	}
	if in.Smoker, err = label(idx.smokers, rec, "smoker"); err != nil {
		return in, err
	}
	if in.Sex, err = label(idx.sexes, rec, "sex"); err != nil {
		return in, err
	}
	in.FirstName = rec["first_name"]
	in.LastName = rec["last_name"]
	in.Email = rec["patient_email"]

	if err := binding.Validator.ValidateStruct(&in); err != nil {
		return in, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return in, nil
}

func parseUser(rec Record, roles map[string]uint) (models.AppUserInput, error) {
	in := models.AppUserInput{
		Username: rec["username"],
		Password: rec["password"],
		Email:    rec["user_email"],
	}
	role, err := label(roles, rec, "role_name")
	if err != nil {
		return in, err
	}
	in.RoleID = role

	if err := binding.Validator.ValidateStruct(&in); err != nil {
		return in, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return in, nil
}

func atoi(rec Record, col string) (int, error) {
	v, err := strconv.Atoi(rec[col])
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", apperr.ErrInvalidInput, col, rec[col])
	}
	return v, nil
}

func atof(rec Record, col string) (float64, error) {
	v, err := strconv.ParseFloat(rec[col], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", apperr.ErrInvalidInput, col, rec[col])
	}
	return v, nil
}

func label(ids map[string]uint, rec Record, col string) (*uint, error) {
	id, ok := ids[strings.ToLower(strings.TrimSpace(rec[col]))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown %s %q", apperr.ErrInvalidReference, col, rec[col])
	}
	return &id, nil
}

func numbered(n int, lines []int) []int {
	if lines != nil {
		return lines
	}
	lines = make([]int, n)
	for i := range lines {
		lines[i] = i + 1
	}
	return lines
}

func mergeFailures(a, b []RowError) []RowError {
	out := append(a, b...)
	sortFailures(out)
	return out
}

func sortFailures(f []RowError) {
	sort.Slice(f, func(i, j int) bool { return f[i].Line < f[j].Line })
}
