package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	"github.com/kaupunki/parking-permits/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (customerdomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Address{},
		&customerdomain.Customer{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:        db,
		Log:       zap.NewNop(),
		Repo:      repository.Provide(),
		Addresses: repository.ProvideAddress(),
		GenID:     node,
	})
	return svc, db
}

func upsertRequest(securityBan bool) customerdomain.UpsertCustomerRequest {
	return customerdomain.UpsertCustomerRequest{
		NationalIDNumber:   "290200A905H",
		FirstName:          "Matti",
		LastName:           "Meikäläinen",
		Email:              "matti@example.com",
		AddressSecurityBan: securityBan,
		PrimaryAddress: &customerdomain.AddressInput{
			StreetName:   "Mannerheimintie",
			StreetNumber: "2",
			City:         "Helsinki",
			PostalCode:   "00100",
		},
	}
}

func TestUpsertStoresNamesAndAddress(t *testing.T) {
	svc, _ := newService(t)

	customer, err := svc.Upsert(context.Background(), upsertRequest(false))
	require.NoError(t, err)
	assert.Equal(t, "Matti", customer.FirstName)
	assert.Equal(t, "Meikäläinen", customer.LastName)
	require.NotNil(t, customer.PrimaryAddressID)
}

func TestUpsertSecurityBanBlanksNameAndAddress(t *testing.T) {
	svc, _ := newService(t)

	customer, err := svc.Upsert(context.Background(), upsertRequest(true))
	require.NoError(t, err)
	assert.True(t, customer.AddressSecurityBan)
	assert.Empty(t, customer.FirstName)
	assert.Empty(t, customer.LastName)
	assert.Nil(t, customer.PrimaryAddressID)
	assert.Nil(t, customer.OtherAddressID)
	assert.Equal(t, "matti@example.com", customer.Email)
}

func TestUpsertSecurityBanBlanksExistingCustomer(t *testing.T) {
	svc, db := newService(t)

	first, err := svc.Upsert(context.Background(), upsertRequest(false))
	require.NoError(t, err)

	banned, err := svc.Upsert(context.Background(), upsertRequest(true))
	require.NoError(t, err)
	assert.Equal(t, first.ID, banned.ID)
	assert.Empty(t, banned.FirstName)
	assert.Empty(t, banned.LastName)
	assert.Nil(t, banned.PrimaryAddressID)

	var stored customerdomain.Customer
	require.NoError(t, db.First(&stored, "id = ?", first.ID).Error)
	assert.Empty(t, stored.FirstName)
	assert.Empty(t, stored.LastName)
}
