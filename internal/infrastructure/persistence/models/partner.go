package models

import (
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/shared"
)

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	AggregateModel
	Name          string `gorm:"type:varchar(200);not null"`
	ContactPerson string `gorm:"type:varchar(100)"`
	Phone         string `gorm:"type:varchar(10);index"`
	Email         string `gorm:"type:varchar(200)"`
	Address       string `gorm:"type:text"`
	Status        string `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		Lifecycle:         shared.Lifecycle{Status: shared.ActiveStatus(m.Status)},
		Name:              m.Name,
		ContactPerson:     m.ContactPerson,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.ContactPerson = s.ContactPerson
	m.Phone = s.Phone
	m.Email = s.Email
	m.Address = s.Address
	m.Status = string(s.Status)
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
