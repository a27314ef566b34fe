package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	"github.com/kaupunki/parking-permits/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      customerdomain.Repository
	addresses customerdomain.AddressRepository
	genID     *snowflake.Node
}

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      customerdomain.Repository
	Addresses customerdomain.AddressRepository
	GenID     *snowflake.Node
}

func NewService(p ServiceParam) customerdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("customer.service"),
		repo:      p.Repo,
		addresses: p.Addresses,
		genID:     p.GenID,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (customerdomain.Customer, error) {
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return customerdomain.Customer{}, err
	}
	if customer == nil {
		return customerdomain.Customer{}, customerdomain.ErrCustomerNotFound
	}
	return *customer, nil
}

func (s *Service) GetByNationalID(ctx context.Context, nationalID string) (customerdomain.Customer, error) {
	customer, err := s.repo.FindByNationalID(ctx, s.db, nationalID)
	if err != nil {
		return customerdomain.Customer{}, err
	}
	if customer == nil {
		return customerdomain.Customer{}, customerdomain.ErrCustomerNotFound
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context, req customerdomain.ListCustomersRequest) ([]customerdomain.Customer, pagination.PageInfo, error) {
	return s.repo.List(ctx, s.db, req.Pagination, req.Search, req.OrderBy)
}

func (s *Service) Upsert(ctx context.Context, req customerdomain.UpsertCustomerRequest) (customerdomain.Customer, error) {
	return s.UpsertTx(ctx, s.db, req)
}

func (s *Service) UpsertTx(ctx context.Context, tx *gorm.DB, req customerdomain.UpsertCustomerRequest) (customerdomain.Customer, error) {
	// Customers under an address security ban must not have name or
	// address data stored at all.
	if req.AddressSecurityBan {
		req.FirstName = ""
		req.LastName = ""
		req.PrimaryAddress = nil
		req.OtherAddress = nil
	}

	customer, err := s.repo.FindByNationalID(ctx, tx, req.NationalIDNumber)
	if err != nil {
		return customerdomain.Customer{}, err
	}

	if customer == nil {
		customer = &customerdomain.Customer{
			ID:               s.genID.Generate(),
			NationalIDNumber: req.NationalIDNumber,
		}
		if err := s.applyUpsert(ctx, tx, customer, req); err != nil {
			return customerdomain.Customer{}, err
		}
		if err := s.repo.Insert(ctx, tx, customer); err != nil {
			return customerdomain.Customer{}, err
		}
		return *customer, nil
	}

	if err := s.applyUpsert(ctx, tx, customer, req); err != nil {
		return customerdomain.Customer{}, err
	}
	if err := s.repo.Update(ctx, tx, customer); err != nil {
		return customerdomain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) applyUpsert(ctx context.Context, tx *gorm.DB, customer *customerdomain.Customer, req customerdomain.UpsertCustomerRequest) error {
	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Email = req.Email
	customer.PhoneNumber = req.PhoneNumber
	customer.AddressSecurityBan = req.AddressSecurityBan
	customer.DriverLicenseChecked = req.DriverLicenseChecked

	primaryID, err := s.upsertLinkedAddress(ctx, tx, customer.PrimaryAddressID, req.PrimaryAddress)
	if err != nil {
		return err
	}
	customer.PrimaryAddressID = primaryID
	customer.PrimaryAddress = nil

	otherID, err := s.upsertLinkedAddress(ctx, tx, customer.OtherAddressID, req.OtherAddress)
	if err != nil {
		return err
	}
	customer.OtherAddressID = otherID
	customer.OtherAddress = nil

	return nil
}

// upsertLinkedAddress stores the input under the existing linked address row
// when one exists, otherwise inserts a new row. A nil input unlinks.
func (s *Service) upsertLinkedAddress(ctx context.Context, tx *gorm.DB, existingID *snowflake.ID, input *customerdomain.AddressInput) (*snowflake.ID, error) {
	if input == nil {
		return nil, nil
	}

	if existingID != nil {
		address, err := s.addresses.FindByID(ctx, tx, *existingID)
		if err != nil {
			return nil, err
		}
		if address != nil {
			applyAddressInput(address, *input)
			if err := s.addresses.Update(ctx, tx, address); err != nil {
				return nil, err
			}
			return existingID, nil
		}
	}

	address := customerdomain.Address{ID: s.genID.Generate()}
	applyAddressInput(&address, *input)
	if err := s.addresses.Insert(ctx, tx, &address); err != nil {
		return nil, err
	}
	return &address.ID, nil
}

func (s *Service) CreateAddress(ctx context.Context, input customerdomain.AddressInput) (customerdomain.Address, error) {
	address := customerdomain.Address{ID: s.genID.Generate()}
	applyAddressInput(&address, input)
	if err := s.addresses.Insert(ctx, s.db, &address); err != nil {
		return customerdomain.Address{}, err
	}
	return address, nil
}

func (s *Service) UpdateAddress(ctx context.Context, id snowflake.ID, input customerdomain.AddressInput) (customerdomain.Address, error) {
	address, err := s.addresses.FindByID(ctx, s.db, id)
	if err != nil {
		return customerdomain.Address{}, err
	}
	if address == nil {
		return customerdomain.Address{}, customerdomain.ErrAddressNotFound
	}
	applyAddressInput(address, input)
	if err := s.addresses.Update(ctx, s.db, address); err != nil {
		return customerdomain.Address{}, err
	}
	return *address, nil
}

func (s *Service) DeleteAddress(ctx context.Context, id snowflake.ID) error {
	address, err := s.addresses.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if address == nil {
		return customerdomain.ErrAddressNotFound
	}
	return s.addresses.Delete(ctx, s.db, id)
}

func (s *Service) GetAddress(ctx context.Context, id snowflake.ID) (customerdomain.Address, error) {
	address, err := s.addresses.FindByID(ctx, s.db, id)
	if err != nil {
		return customerdomain.Address{}, err
	}
	if address == nil {
		return customerdomain.Address{}, customerdomain.ErrAddressNotFound
	}
	return *address, nil
}

func (s *Service) ListAddresses(ctx context.Context, req customerdomain.ListAddressesRequest) ([]customerdomain.Address, pagination.PageInfo, error) {
	return s.addresses.List(ctx, s.db, req.Pagination, req.Search, req.OrderBy)
}

func applyAddressInput(address *customerdomain.Address, input customerdomain.AddressInput) {
	address.StreetName = input.StreetName
	address.StreetNameSv = input.StreetNameSv
	address.StreetNumber = input.StreetNumber
	address.City = input.City
	address.CitySv = input.CitySv
	address.PostalCode = input.PostalCode
	address.Location = input.Location
	address.ZoneID = input.ZoneID
}
