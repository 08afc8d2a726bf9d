package mocks

import (
	"context"

	"cost-sync/core/odoo"
	"cost-sync/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of odoo.Client
type Client struct {
	mock.Mock
}

func (m *Client) ListCompanies(ctx context.Context) ([]odoo.Company, error) {
	args := m.Called(ctx)
	if companies, ok := args.Get(0).([]odoo.Company); ok {
		return companies, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) FindZeroCostProducts(ctx context.Context, companyID int64) ([]reconcile.ProductRecord, bool, error) {
	args := m.Called(ctx, companyID)
	if records, ok := args.Get(0).([]reconcile.ProductRecord); ok {
		return records, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *Client) FindReferenceProducts(ctx context.Context, companyID int64, skus, names []string) ([]reconcile.ProductRecord, error) {
	args := m.Called(ctx, companyID, skus, names)
	if records, ok := args.Get(0).([]reconcile.ProductRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) WriteCost(ctx context.Context, companyID, productID int64, newCost float64) error {
	args := m.Called(ctx, companyID, productID, newCost)
	return args.Error(0)
}
