package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sileme/sileme/internal/models"
)

var (
	ErrContactNotFound     = errors.New("emergency contact not found")
	ErrContactExists       = errors.New("emergency contact already exists")
	ErrContactLimitReached = errors.New("emergency contact limit reached")
)

var contactPhoneRegex = regexp.MustCompile(`^1[3-9]\d{9}$`)

type ContactRepository interface {
	Create(contact *models.EmergencyContact) error
	Save(contact *models.EmergencyContact) error
	ListByUser(userID uint) ([]models.EmergencyContact, error)
	CountByUser(userID uint) (int64, error)
	FindByIDForUser(userID uint, contactID uint) (models.EmergencyContact, bool, error)
	ExistsMatching(userID uint, phone string, email string, excludeID uint) (bool, error)
	DeleteByIDForUser(userID uint, contactID uint) (bool, error)
}

// ContactService manages the user's emergency contacts, a small capped list
// of people to reach when check-ins stop coming.
type ContactService struct {
	contacts ContactRepository
}

func NewContactService(contacts ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

type ContactInput struct {
	Name         string
	Phone        string
	Email        string
	Relationship string
}

func (service *ContactService) ListContacts(userID uint) ([]models.EmergencyContact, error) {
	contacts, err := service.contacts.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (service *ContactService) AddContact(userID uint, input ContactInput) (models.EmergencyContact, error) {
	input = normalizeContactInput(input)
	if err := validateContactInput(input); err != nil {
		return models.EmergencyContact{}, err
	}

	count, err := service.contacts.CountByUser(userID)
	if err != nil {
		return models.EmergencyContact{}, fmt.Errorf("count contacts: %w", err)
	}
	if count >= models.MaxEmergencyContacts {
		return models.EmergencyContact{}, ErrContactLimitReached
	}

	duplicate, err := service.contacts.ExistsMatching(userID, input.Phone, input.Email, 0)
	if err != nil {
		return models.EmergencyContact{}, fmt.Errorf("check duplicate contact: %w", err)
	}
	if duplicate {
		return models.EmergencyContact{}, ErrContactExists
	}

	contact := models.EmergencyContact{
		UserID:       userID,
		Name:         input.Name,
		Phone:        input.Phone,
		Email:        input.Email,
		Relationship: input.Relationship,
	}
	if err := service.contacts.Create(&contact); err != nil {
		return models.EmergencyContact{}, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

func (service *ContactService) UpdateContact(userID uint, contactID uint, input ContactInput) (models.EmergencyContact, error) {
	input = normalizeContactInput(input)
	if err := validateContactInput(input); err != nil {
		return models.EmergencyContact{}, err
	}

	contact, found, err := service.contacts.FindByIDForUser(userID, contactID)
	if err != nil {
		return models.EmergencyContact{}, fmt.Errorf("load contact: %w", err)
	}
	if !found {
		return models.EmergencyContact{}, ErrContactNotFound
	}

	duplicate, err := service.contacts.ExistsMatching(userID, input.Phone, input.Email, contactID)
	if err != nil {
		return models.EmergencyContact{}, fmt.Errorf("check duplicate contact: %w", err)
	}
	if duplicate {
		return models.EmergencyContact{}, ErrContactExists
	}

	contact.Name = input.Name
	contact.Phone = input.Phone
	contact.Email = input.Email
	contact.Relationship = input.Relationship
	if err := service.contacts.Save(&contact); err != nil {
		return models.EmergencyContact{}, fmt.Errorf("save contact: %w", err)
	}
	return contact, nil
}

func (service *ContactService) DeleteContact(userID uint, contactID uint) error {
	deleted, err := service.contacts.DeleteByIDForUser(userID, contactID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if !deleted {
		return ErrContactNotFound
	}
	return nil
}

func normalizeContactInput(input ContactInput) ContactInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Relationship = strings.TrimSpace(input.Relationship)
	return input
}

func validateContactInput(input ContactInput) error {
	var violations violationCollector

	if input.Name == "" {
		violations.add("name", "name is required")
	} else if utf8.RuneCountInString(input.Name) > models.ContactNameMaxLength {
		violations.add("name", fmt.Sprintf("name must be at most %d characters", models.ContactNameMaxLength))
	}
	if input.Phone != "" && !contactPhoneRegex.MatchString(input.Phone) {
		violations.add("phone", "phone number is invalid")
	}
	if input.Email != "" && !emailRegex.MatchString(input.Email) {
		violations.add("email", "email is invalid")
	}
	if input.Phone == "" && input.Email == "" {
		violations.add("phone", "at least one of phone or email is required")
	}
	if utf8.RuneCountInString(input.Relationship) > models.ContactRelationshipMaxLength {
		violations.add("relationship", fmt.Sprintf("relationship must be at most %d characters", models.ContactRelationshipMaxLength))
	}

	return violations.result()
}
