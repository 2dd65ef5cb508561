package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"gorm.io/gorm"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/model"
)

// Store defines the persistence boundary for spots, stays and customers.
type Store interface {
	// Transaction runs fn against a transaction-bound Store. Every write made
	// through tx commits together or not at all.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetSpot(ctx context.Context, id string) (*model.ParkingSpot, error)
	ListSpots(ctx context.Context, f SpotFilter) ([]model.ParkingSpot, error)
	CreateSpots(ctx context.Context, spots []model.ParkingSpot) error
	UpdateSpot(ctx context.Context, id string, cond Cond, changes map[string]any) (bool, error)

	GetVehicle(ctx context.Context, id string) (*model.Vehicle, error)
	ListVehicles(ctx context.Context, f VehicleFilter) ([]model.Vehicle, error)
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	UpdateVehicle(ctx context.Context, id string, cond Cond, changes map[string]any) (bool, error)

	CreateCustomer(ctx context.Context, c *model.Customer) error
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	SearchCustomers(ctx context.Context, prefix string, limit int) ([]model.Customer, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	return classify(err)
}

func (s *gormStore) GetSpot(ctx context.Context, id string) (*model.ParkingSpot, error) {
	var spot model.ParkingSpot
	if err := s.db.WithContext(ctx).First(&spot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: parking spot %s", errs.ErrNotFound, id)
		}
		return nil, classify(err)
	}
	return &spot, nil
}

func (s *gormStore) ListSpots(ctx context.Context, f SpotFilter) ([]model.ParkingSpot, error) {
	q := s.db.WithContext(ctx).Model(&model.ParkingSpot{})
	if f.LotID != "" {
		q = q.Where("lot_id = ?", f.LotID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Label != "" {
		q = q.Where("UPPER(label) = UPPER(?)", f.Label)
	}

	var spots []model.ParkingSpot
	if err := q.Order("label ASC").Find(&spots).Error; err != nil {
		return nil, classify(err)
	}
	return spots, nil
}

func (s *gormStore) CreateSpots(ctx context.Context, spots []model.ParkingSpot) error {
	if len(spots) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&spots, 100).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (s *gormStore) UpdateSpot(ctx context.Context, id string, cond Cond, changes map[string]any) (bool, error) {
	return s.conditionalUpdate(ctx, &model.ParkingSpot{}, id, cond, changes)
}

func (s *gormStore) GetVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := s.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vehicle %s", errs.ErrNotFound, id)
		}
		return nil, classify(err)
	}
	return &v, nil
}

func (s *gormStore) ListVehicles(ctx context.Context, f VehicleFilter) ([]model.Vehicle, error) {
	q := s.db.WithContext(ctx).Model(&model.Vehicle{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.LicensePlate != "" {
		q = q.Where("license_plate = ?", f.LicensePlate)
	}
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.ParkingSpotID != "" {
		q = q.Where("parking_spot_id = ?", f.ParkingSpotID)
	}
	if !f.CheckedInFrom.IsZero() {
		q = q.Where("check_in_time >= ?", f.CheckedInFrom)
	}
	if !f.CheckedInTo.IsZero() {
		q = q.Where("check_in_time < ?", f.CheckedInTo)
	}
	if f.NewestFirst {
		q = q.Order("check_in_time DESC")
	} else {
		q = q.Order("check_in_time ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var vehicles []model.Vehicle
	if err := q.Find(&vehicles).Error; err != nil {
		return nil, classify(err)
	}
	return vehicles, nil
}

func (s *gormStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	return classify(s.db.WithContext(ctx).Create(v).Error)
}

func (s *gormStore) UpdateVehicle(ctx context.Context, id string, cond Cond, changes map[string]any) (bool, error) {
	return s.conditionalUpdate(ctx, &model.Vehicle{}, id, cond, changes)
}

func (s *gormStore) CreateCustomer(ctx context.Context, c *model.Customer) error {
	return classify(s.db.WithContext(ctx).Create(c).Error)
}

func (s *gormStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", errs.ErrNotFound, id)
		}
		return nil, classify(err)
	}
	return &c, nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchCustomers matches a prefix of the lowercase name, the phone number or the email.
func (s *gormStore) SearchCustomers(ctx context.Context, prefix string, limit int) ([]model.Customer, error) {
	prefix = likeEscaper.Replace(strings.TrimSpace(prefix))
	lower := strings.ToLower(prefix) + "%"

	q := s.db.WithContext(ctx).
		Where(`name_lowercase LIKE ? ESCAPE '\' OR phone_number LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`,
			lower, prefix+"%", lower).
		Order("name_lowercase ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var customers []model.Customer
	if err := q.Find(&customers).Error; err != nil {
		return nil, classify(err)
	}
	return customers, nil
}

// conditionalUpdate applies changes to the row with the given id only while
// every precondition in cond still holds. It reports whether a row changed.
func (s *gormStore) conditionalUpdate(ctx context.Context, m any, id string, cond Cond, changes map[string]any) (bool, error) {
	q := s.db.WithContext(ctx).Model(m).Where("id = ?", id)
	if len(cond) > 0 {
		q = q.Where(map[string]any(cond))
	}
	res := q.Updates(changes)
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// classify maps driver failures onto the error taxonomy. Errors that are
// already domain errors pass through unchanged.
func classify(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	var netErr net.Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", errs.ErrConflict, err)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, err)
	}
	return err
}

func isDomainError(err error) bool {
	for _, kind := range []error{
		errs.ErrValidation, errs.ErrSpotUnavailable, errs.ErrConflict, errs.ErrNotFound,
		errs.ErrInvalidState, errs.ErrIntegrity, errs.ErrStoreUnavailable,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
