package occupancy

import (
	"fmt"
	"strings"

	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/ledger"
)

// CheckInRequest is what a valet submits to park a vehicle.
type CheckInRequest struct {
	CustomerID    string `json:"customerId"`
	Make          string `json:"make"`
	Model         string `json:"model"`
	Color         string `json:"color"`
	LicensePlate  string `json:"licensePlate"`
	ParkingSpotID string `json:"parkingSpotId"`
	ValetID       string `json:"valetId"`
	ExpectedHours int    `json:"expectedHours"`
}

func (r CheckInRequest) normalized() CheckInRequest {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.Make = strings.TrimSpace(r.Make)
	r.Model = strings.TrimSpace(r.Model)
	r.Color = strings.TrimSpace(r.Color)
	r.LicensePlate = ledger.NormalizePlate(r.LicensePlate)
	r.ParkingSpotID = strings.TrimSpace(r.ParkingSpotID)
	r.ValetID = strings.TrimSpace(r.ValetID)
	return r
}

// validate expects a normalized request.
func (r CheckInRequest) validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"customerId", r.CustomerID},
		{"make", r.Make},
		{"model", r.Model},
		{"color", r.Color},
		{"licensePlate", r.LicensePlate},
		{"parkingSpotId", r.ParkingSpotID},
		{"valetId", r.ValetID},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing "+strings.Join(missing, ", "))
	}
	if r.ExpectedHours <= 0 {
		problems = append(problems, "expectedHours must be a positive number of hours")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errs.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
