package db

import (
	"github.com/sileme/sileme/internal/models"
	"gorm.io/gorm"
)

type ContactRepository struct {
	database *gorm.DB
}

func NewContactRepository(database *gorm.DB) *ContactRepository {
	return &ContactRepository{database: database}
}

func (repo *ContactRepository) Create(contact *models.EmergencyContact) error {
	return repo.database.Create(contact).Error
}

func (repo *ContactRepository) Save(contact *models.EmergencyContact) error {
	return repo.database.Save(contact).Error
}

func (repo *ContactRepository) ListByUser(userID uint) ([]models.EmergencyContact, error) {
	contacts := make([]models.EmergencyContact, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (repo *ContactRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.EmergencyContact{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *ContactRepository) FindByIDForUser(userID uint, contactID uint) (models.EmergencyContact, bool, error) {
	contact := models.EmergencyContact{}
	result := repo.database.
		Where("user_id = ? AND id = ?", userID, contactID).
		Limit(1).
		Find(&contact)
	if result.Error != nil {
		return models.EmergencyContact{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.EmergencyContact{}, false, nil
	}
	return contact, true, nil
}

// ExistsMatching reports whether the user already has a contact sharing the
// phone or email, excluding one contact ID (zero to exclude none).
func (repo *ContactRepository) ExistsMatching(userID uint, phone string, email string, excludeID uint) (bool, error) {
	scope := repo.database.Model(&models.EmergencyContact{}).
		Where("user_id = ? AND id != ?", userID, excludeID)

	switch {
	case phone != "" && email != "":
		scope = scope.Where("phone = ? OR email = ?", phone, email)
	case phone != "":
		scope = scope.Where("phone = ?", phone)
	case email != "":
		scope = scope.Where("email = ?", email)
	default:
		return false, nil
	}

	var matched int64
	if err := scope.Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ContactRepository) DeleteByIDForUser(userID uint, contactID uint) (bool, error) {
	result := repo.database.
		Where("user_id = ? AND id = ?", userID, contactID).
		Delete(&models.EmergencyContact{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *ContactRepository) DeleteByUser(userID uint) (int64, error) {
	result := repo.database.
		Where("user_id = ?", userID).
		Delete(&models.EmergencyContact{})
	return result.RowsAffected, result.Error
}
