package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kaupunki/parking-permits/internal/config"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"go.uber.org/zap"
)

type RegistryVehicle struct {
	RegistrationNumber string                     `json:"registration_number"`
	Manufacturer       string                     `json:"manufacturer"`
	Model              string                     `json:"model"`
	VehicleClass       string                     `json:"vehicle_class"`
	SerialNumber       string                     `json:"serial_number"`
	PowerType          vehicledomain.PowerType    `json:"power_type"`
	EuroClass          int                        `json:"euro_class"`
	Emission           int                        `json:"emission"`
	EmissionType       vehicledomain.EmissionType `json:"emission_type"`
	InspectionDue      *time.Time                 `json:"inspection_due"`
	Owners             []string                   `json:"owners"`
}

// VehicleRegistry resolves a registration number to vehicle details and
// answers the ownership, license and inspection checks the payment platform
// requires before a purchase.
type VehicleRegistry interface {
	FetchVehicle(ctx context.Context, registration string) (RegistryVehicle, error)
	IsVehicleOwner(ctx context.Context, nationalID, registration string) (bool, error)
	HasValidDrivingLicense(ctx context.Context, nationalID string) (bool, error)
	IsInspectionValid(ctx context.Context, registration string) (bool, error)
}

type TraficomClient struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

func NewTraficomClient(cfg config.Config, log *zap.Logger) *TraficomClient {
	return &TraficomClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.TraficomBaseURL,
		log:     log.Named("registry.traficom"),
	}
}

func (c *TraficomClient) FetchVehicle(ctx context.Context, registration string) (RegistryVehicle, error) {
	var vehicle RegistryVehicle
	endpoint := fmt.Sprintf("%s/vehicles/%s", c.baseURL, url.PathEscape(registration))
	if err := c.getJSON(ctx, endpoint, &vehicle); err != nil {
		return RegistryVehicle{}, err
	}
	return vehicle, nil
}

func (c *TraficomClient) IsVehicleOwner(ctx context.Context, nationalID, registration string) (bool, error) {
	vehicle, err := c.FetchVehicle(ctx, registration)
	if err != nil {
		return false, err
	}
	for _, owner := range vehicle.Owners {
		if owner == nationalID {
			return true, nil
		}
	}
	return false, nil
}

func (c *TraficomClient) HasValidDrivingLicense(ctx context.Context, nationalID string) (bool, error) {
	var result struct {
		Valid bool `json:"valid"`
	}
	endpoint := fmt.Sprintf("%s/driving-licenses/%s", c.baseURL, url.PathEscape(nationalID))
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return false, err
	}
	return result.Valid, nil
}

func (c *TraficomClient) IsInspectionValid(ctx context.Context, registration string) (bool, error) {
	vehicle, err := c.FetchVehicle(ctx, registration)
	if err != nil {
		return false, err
	}
	if vehicle.InspectionDue == nil {
		return true, nil
	}
	return vehicle.InspectionDue.After(time.Now()), nil
}

func (c *TraficomClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("traficom lookup: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// VehicleRequest maps the registry view onto a vehicle upsert.
func (v RegistryVehicle) VehicleRequest() vehicledomain.UpsertVehicleRequest {
	return vehicledomain.UpsertVehicleRequest{
		RegistrationNumber: v.RegistrationNumber,
		Manufacturer:       v.Manufacturer,
		Model:              v.Model,
		VehicleClass:       v.VehicleClass,
		SerialNumber:       v.SerialNumber,
		PowerType:          v.PowerType,
		EuroClass:          v.EuroClass,
		Emission:           v.Emission,
		EmissionType:       v.EmissionType,
	}
}
