// Package registry contains thin HTTP clients for the national person
// registry (DVV) and the vehicle registry (Traficom). Responses are mapped
// straight onto upsert requests; no registry state is cached locally.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kaupunki/parking-permits/internal/config"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	"go.uber.org/zap"
)

type Person struct {
	NationalIDNumber   string `json:"national_id_number"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	AddressSecurityBan bool   `json:"address_security_ban"`
	PrimaryAddress     *struct {
		StreetName   string `json:"street_name"`
		StreetNameSv string `json:"street_name_sv"`
		StreetNumber string `json:"street_number"`
		City         string `json:"city"`
		CitySv       string `json:"city_sv"`
		PostalCode   string `json:"postal_code"`
	} `json:"primary_address"`
}

// PersonRegistry resolves a national identity number to person details.
type PersonRegistry interface {
	FetchPerson(ctx context.Context, nationalID string) (Person, error)
}

type DVVClient struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

func NewDVVClient(cfg config.Config, log *zap.Logger) *DVVClient {
	return &DVVClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.DVVBaseURL,
		log:     log.Named("registry.dvv"),
	}
}

func (c *DVVClient) FetchPerson(ctx context.Context, nationalID string) (Person, error) {
	endpoint := fmt.Sprintf("%s/persons/%s", c.baseURL, url.PathEscape(nationalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Person{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Person{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Person{}, fmt.Errorf("dvv person lookup: unexpected status %d", resp.StatusCode)
	}

	var person Person
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		return Person{}, err
	}
	return person, nil
}

// CustomerRequest maps the registry view onto a customer upsert.
func (p Person) CustomerRequest() customerdomain.UpsertCustomerRequest {
	req := customerdomain.UpsertCustomerRequest{
		NationalIDNumber:   p.NationalIDNumber,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		AddressSecurityBan: p.AddressSecurityBan,
	}
	if p.PrimaryAddress != nil && !p.AddressSecurityBan {
		req.PrimaryAddress = &customerdomain.AddressInput{
			StreetName:   p.PrimaryAddress.StreetName,
			StreetNameSv: p.PrimaryAddress.StreetNameSv,
			StreetNumber: p.PrimaryAddress.StreetNumber,
			City:         p.PrimaryAddress.City,
			CitySv:       p.PrimaryAddress.CitySv,
			PostalCode:   p.PrimaryAddress.PostalCode,
		}
	}
	return req
}
