// Package customer registers and looks up the owners of parked vehicles.
package customer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/ledger"
	"valet-parking-backend/internal/model"
	"valet-parking-backend/internal/store"
)

// SearchLimit caps the number of customers returned by Search.
const SearchLimit = 25

// Registration is the input to Register.
type Registration struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func validationProblems(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fe.Field()+" is required")
		case "email":
			problems = append(problems, fe.Field()+" is not a valid address")
		default:
			problems = append(problems, fe.Field()+" failed "+fe.Tag())
		}
	}
	return problems
}

// Service manages customers.
type Service struct {
	st  store.Store
	log logrus.FieldLogger
	now func() time.Time
}

// NewService creates a customer Service.
func NewService(st store.Store, log logrus.FieldLogger) *Service {
	return &Service{
		st:  st,
		log: log.WithField("component", "customer"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Register stores a new customer.
func (s *Service) Register(ctx context.Context, r Registration) (*model.Customer, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Email = strings.TrimSpace(r.Email)

	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrValidation, strings.Join(validationProblems(err), "; "))
	}

	c := &model.Customer{
		ID:            uuid.NewString(),
		Name:          r.Name,
		PhoneNumber:   r.PhoneNumber,
		Email:         r.Email,
		NameLowercase: strings.ToLower(r.Name),
		CreatedAt:     s.now(),
	}
	if err := s.st.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	s.log.WithField("customer_id", c.ID).Info("customer registered")
	return c, nil
}

// Get returns a customer by id.
func (s *Service) Get(ctx context.Context, id string) (*model.Customer, error) {
	return s.st.GetCustomer(ctx, id)
}

// Search matches a prefix of the name, phone number or email.
func (s *Service) Search(ctx context.Context, q string) ([]model.Customer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: search query is required", errs.ErrValidation)
	}
	return s.st.SearchCustomers(ctx, q, SearchLimit)
}

// Vehicles returns a customer's stays, most recent first.
func (s *Service) Vehicles(ctx context.Context, id string) ([]model.Vehicle, error) {
	if _, err := s.st.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	return ledger.New(s.st, s.now).ListByCustomer(ctx, id)
}
