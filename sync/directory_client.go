// ABOUTME: Google Workspace Directory API client for group membership
// ABOUTME: Lists, inserts, and deletes Google Group members as contacts
package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/harperreed/groupsync/models"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DirectoryClient reads and writes Google Group membership. Groups are addressed
// by group key, usually the group's email address.
type DirectoryClient struct {
	service *admin.Service
}

// NewDirectoryClient creates a Directory API client. Callers normally pass
// option.WithTokenSource with a source from TokenSource.
func NewDirectoryClient(ctx context.Context, opts ...option.ClientOption) (*DirectoryClient, error) {
	service, err := admin.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Directory service: %w", err)
	}

	return &DirectoryClient{service: service}, nil
}

// GetContacts returns the current members of a group in API order.
func (c *DirectoryClient) GetContacts(ctx context.Context, groupKey string) ([]models.Contact, error) {
	contacts := []models.Contact{}

	err := c.service.Members.List(groupKey).Context(ctx).Pages(ctx, func(page *admin.Members) error {
		for _, member := range page.Members {
			contacts = append(contacts, memberToContact(member))
		}
		return nil
	})
	if err != nil {
		return nil, directoryError(http.MethodGet, "groups/"+groupKey+"/members", err)
	}

	return contacts, nil
}

// AddContact inserts the contact's email as a group member.
func (c *DirectoryClient) AddContact(ctx context.Context, groupKey string, contact models.Contact) error {
	_, err := c.service.Members.Insert(groupKey, contactToMember(contact)).Context(ctx).Do()
	if err != nil {
		return directoryError(http.MethodPost, "groups/"+groupKey+"/members", err)
	}
	return nil
}

// RemoveContact deletes the group member with the contact's email.
func (c *DirectoryClient) RemoveContact(ctx context.Context, groupKey string, contact models.Contact) error {
	err := c.service.Members.Delete(groupKey, contact.Email).Context(ctx).Do()
	if err != nil {
		return directoryError(http.MethodDelete, "groups/"+groupKey+"/members/"+contact.Email, err)
	}
	return nil
}

func contactToMember(contact models.Contact) *admin.Member {
	return &admin.Member{
		Email: contact.Email,
		Role:  "MEMBER",
	}
}

func memberToContact(member *admin.Member) models.Contact {
	return models.Contact{Email: member.Email}
}

func directoryError(method, path string, err error) error {
	transportErr := &TransportError{Method: method, URL: path, Err: err}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		transportErr.StatusCode = apiErr.Code
	}

	return transportErr
}
