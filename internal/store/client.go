package store

import (
	"context"

	"github.com/go-authgate/realmgate/internal/models"
)

func (s *Store) CreateClient(ctx context.Context, client *models.Client) error {
	return translate(s.db.WithContext(ctx).Create(client).Error)
}

// GetClient looks up a client by its realm-scoped client_id.
func (s *Store) GetClient(ctx context.Context, realmID, clientID string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).
		Where("realm_id = ? AND client_id = ?", realmID, clientID).
		First(&client).Error
	if err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

func (s *Store) ListClients(ctx context.Context, realmID string) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).Where("realm_id = ?", realmID).Order("client_id").Find(&clients).Error
	return clients, err
}

// DeleteClient removes a client. Returns ErrNotFound if it does not exist.
func (s *Store) DeleteClient(ctx context.Context, realmID, clientID string) error {
	result := s.db.WithContext(ctx).
		Where("realm_id = ? AND client_id = ?", realmID, clientID).
		Delete(&models.Client{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
