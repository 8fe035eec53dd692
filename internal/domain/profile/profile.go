package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type BloodType string

const (
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
)

// Valid reports whether b is one of the known blood types. Empty is valid.
func (b BloodType) Valid() bool {
	switch b {
	case "", BloodOPos, BloodONeg, BloodAPos, BloodANeg, BloodBPos, BloodBNeg, BloodABPos, BloodABNeg:
		return true
	}
	return false
}

type IDType string

const (
	IDTypeCitizen   IDType = "CC"
	IDTypeMinor     IDType = "TI"
	IDTypeForeigner IDType = "CE"
	IDTypePassport  IDType = "PAS"
)

func (t IDType) Valid() bool {
	switch t {
	case "", IDTypeCitizen, IDTypeMinor, IDTypeForeigner, IDTypePassport:
		return true
	}
	return false
}

// Data is the personal and emergency-contact payload of a profile.
// Every field is optional and there are no cross-field rules.
type Data struct {
	FullName              string    `json:"fullName"`
	RH                    BloodType `json:"rh"`
	IDType                IDType    `json:"idType"`
	IDNumber              string    `json:"idNumber"`
	HealthInsurance       string    `json:"healthInsurance"`
	HealthInsuranceNumber string    `json:"healthInsuranceNumber"`
	ExtraInfo             string    `json:"extraInfo"`

	EmergencyName         string `json:"emergencyName"`
	EmergencyContact      string `json:"emergencyContact"`
	EmergencyRelationship string `json:"emergencyRelationship"`
}

// DataPatch carries a partial Data; nil fields are left untouched on merge.
type DataPatch struct {
	FullName              *string    `json:"fullName,omitempty"`
	RH                    *BloodType `json:"rh,omitempty"`
	IDType                *IDType    `json:"idType,omitempty"`
	IDNumber              *string    `json:"idNumber,omitempty"`
	HealthInsurance       *string    `json:"healthInsurance,omitempty"`
	HealthInsuranceNumber *string    `json:"healthInsuranceNumber,omitempty"`
	ExtraInfo             *string    `json:"extraInfo,omitempty"`
	EmergencyName         *string    `json:"emergencyName,omitempty"`
	EmergencyContact      *string    `json:"emergencyContact,omitempty"`
	EmergencyRelationship *string    `json:"emergencyRelationship,omitempty"`
}

func (d Data) Merge(p DataPatch) Data {
	if p.FullName != nil {
		d.FullName = *p.FullName
	}
	if p.RH != nil {
		d.RH = *p.RH
	}
	if p.IDType != nil {
		d.IDType = *p.IDType
	}
	if p.IDNumber != nil {
		d.IDNumber = *p.IDNumber
	}
	if p.HealthInsurance != nil {
		d.HealthInsurance = *p.HealthInsurance
	}
	if p.HealthInsuranceNumber != nil {
		d.HealthInsuranceNumber = *p.HealthInsuranceNumber
	}
	if p.ExtraInfo != nil {
		d.ExtraInfo = *p.ExtraInfo
	}
	if p.EmergencyName != nil {
		d.EmergencyName = *p.EmergencyName
	}
	if p.EmergencyContact != nil {
		d.EmergencyContact = *p.EmergencyContact
	}
	if p.EmergencyRelationship != nil {
		d.EmergencyRelationship = *p.EmergencyRelationship
	}
	return d
}

// Profile is one identity card of an owner. A nil ID marks a draft that has
// not been persisted yet.
type Profile struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Data        Data       `json:"data"`
	Chosen      bool       `json:"chosen"`
	Expanded    bool       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p Profile) IsDraft() bool {
	return p.ID == nil
}

// NewDraft returns the empty expanded draft inserted by "add profile".
func NewDraft(ownerID uuid.UUID) Profile {
	return Profile{
		OwnerID:  ownerID,
		Expanded: true,
	}
}

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrActiveProfileDelete = errors.New("the active profile cannot be deleted, choose another profile first")
	ErrLastProfileDelete   = errors.New("at least one profile must remain")
	ErrDraftNotPersisted   = errors.New("profile has not been saved yet")
	ErrUpdateInFlight      = errors.New("another update for this profile is still in progress")

	ErrReloadFailed = errors.New("error loading profiles")
	ErrCreateFailed = errors.New("error saving profile")
	ErrUpdateFailed = errors.New("error updating profile")
	ErrChooseFailed = errors.New("error choosing profile")
	ErrDeleteFailed = errors.New("error deleting profile")
)

// Repository is the remote record store for profiles. Every call is scoped
// by the owner id.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Profile, error)
	Insert(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	ChooseActive(ctx context.Context, id, ownerID uuid.UUID) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	FindChosenByOwner(ctx context.Context, ownerID uuid.UUID) (*Profile, error)
}
