// ABOUTME: testify mocks for the contact source and destination interfaces
// ABOUTME: Used by sync orchestration and CLI tests in place of real API clients
package mocks

import (
	"context"

	"github.com/harperreed/groupsync/models"
	"github.com/stretchr/testify/mock"
)

// Source is a mock ContactSource.
type Source struct {
	mock.Mock
}

func (m *Source) GetContacts(ctx context.Context, list string) ([]models.Contact, error) {
	args := m.Called(ctx, list)
	if contacts, ok := args.Get(0).([]models.Contact); ok {
		return contacts, args.Error(1)
	}
	return nil, args.Error(1)
}

// Static is a mock StaticContactProvider.
type Static struct {
	mock.Mock
}

func (m *Static) GetContacts(list string) []models.Contact {
	args := m.Called(list)
	if contacts, ok := args.Get(0).([]models.Contact); ok {
		return contacts
	}
	return nil
}

// Destination is a mock ContactDestination.
type Destination struct {
	mock.Mock
}

func (m *Destination) GetContacts(ctx context.Context, list string) ([]models.Contact, error) {
	args := m.Called(ctx, list)
	if contacts, ok := args.Get(0).([]models.Contact); ok {
		return contacts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Destination) AddContact(ctx context.Context, list string, contact models.Contact) error {
	args := m.Called(ctx, list, contact)
	return args.Error(0)
}

func (m *Destination) RemoveContact(ctx context.Context, list string, contact models.Contact) error {
	args := m.Called(ctx, list, contact)
	return args.Error(0)
}

// Refresher is a mock for clients that can re-run a source list.
type Refresher struct {
	mock.Mock
}

func (m *Refresher) RefreshList(ctx context.Context, list string) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}
