package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	profileUC "github.com/khoahotran/cuervo/internal/application/usecase/profile"
	"github.com/khoahotran/cuervo/internal/application/usecase/share"
	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/internal/domain/user"
)

// Auth DTOs

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name" binding:"max=120"`
}

type UserDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToUserDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// Profile DTOs

// ProfileDTO is one workspace entry. Ref is the path segment that addresses
// it: the id for persisted profiles, the position for drafts.
type ProfileDTO struct {
	Ref         string       `json:"ref"`
	ID          *string      `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Data        profile.Data `json:"data"`
	Chosen      bool         `json:"chosen"`
	Expanded    bool         `json:"expanded"`
	Draft       bool         `json:"draft"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

type CollectionDTO struct {
	Profiles         []ProfileDTO `json:"profiles"`
	IntegrityWarning bool         `json:"integrity_warning,omitempty"`
}

func ToProfileDTO(index int, p profile.Profile) ProfileDTO {
	dto := ProfileDTO{
		Ref:         strconv.Itoa(index),
		Title:       p.Title,
		Description: p.Description,
		Data:        p.Data,
		Chosen:      p.Chosen,
		Expanded:    p.Expanded,
		Draft:       p.IsDraft(),
	}
	if p.ID != nil {
		id := p.ID.String()
		dto.Ref = id
		dto.ID = &id
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = &p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		dto.UpdatedAt = &p.UpdatedAt
	}
	return dto
}

func ToCollectionDTO(out *profileUC.CollectionOutput) CollectionDTO {
	dto := CollectionDTO{
		Profiles:         make([]ProfileDTO, len(out.Profiles)),
		IntegrityWarning: out.IntegrityWarning,
	}
	for i, p := range out.Profiles {
		dto.Profiles[i] = ToProfileDTO(i, p)
	}
	return dto
}

type ProfileDataPatchRequest struct {
	FullName              *string `json:"fullName" binding:"omitempty,max=200"`
	RH                    *string `json:"rh"`
	IDType                *string `json:"idType"`
	IDNumber              *string `json:"idNumber" binding:"omitempty,max=50"`
	HealthInsurance       *string `json:"healthInsurance" binding:"omitempty,max=200"`
	HealthInsuranceNumber *string `json:"healthInsuranceNumber" binding:"omitempty,max=50"`
	ExtraInfo             *string `json:"extraInfo" binding:"omitempty,max=2000"`
	EmergencyName         *string `json:"emergencyName" binding:"omitempty,max=200"`
	EmergencyContact      *string `json:"emergencyContact" binding:"omitempty,max=50"`
	EmergencyRelationship *string `json:"emergencyRelationship" binding:"omitempty,max=100"`
}

type EditProfileRequest struct {
	Title       *string                  `json:"title" binding:"omitempty,max=120"`
	Description *string                  `json:"description" binding:"omitempty,max=500"`
	Data        *ProfileDataPatchRequest `json:"data"`
}

func (r *EditProfileRequest) ToEditInput() (profileUC.EditInput, error) {
	in := profileUC.EditInput{Title: r.Title, Description: r.Description}
	if r.Data == nil {
		return in, nil
	}

	d := r.Data
	patch := profile.DataPatch{
		FullName:              d.FullName,
		IDNumber:              d.IDNumber,
		HealthInsurance:       d.HealthInsurance,
		HealthInsuranceNumber: d.HealthInsuranceNumber,
		ExtraInfo:             d.ExtraInfo,
		EmergencyName:         d.EmergencyName,
		EmergencyContact:      d.EmergencyContact,
		EmergencyRelationship: d.EmergencyRelationship,
	}
	if d.RH != nil {
		rh := profile.BloodType(*d.RH)
		if !rh.Valid() {
			return in, fmt.Errorf("rh must be one of O+ O- A+ A- B+ B- AB+ AB-, got %q", *d.RH)
		}
		patch.RH = &rh
	}
	if d.IDType != nil {
		t := profile.IDType(*d.IDType)
		if !t.Valid() {
			return in, fmt.Errorf("idType must be one of CC TI CE PAS, got %q", *d.IDType)
		}
		patch.IDType = &t
	}
	in.Data = &patch
	return in, nil
}

// ParseRef reads a profile path segment: a UUID addresses a persisted
// profile, a non-negative integer addresses a draft by position.
func ParseRef(ref string) (profile.Locator, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return profile.ByID(id), nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("profile reference %q is neither an id nor a draft position", ref)
	}
	return profile.ByIndex(n), nil
}

// Public DTOs

// PublicProfileDTO is the read-only view behind a share link. Empty fields
// are left out.
type PublicProfileDTO struct {
	Title                 string `json:"title,omitempty"`
	Description           string `json:"description,omitempty"`
	FullName              string `json:"fullName,omitempty"`
	RH                    string `json:"rh,omitempty"`
	IDType                string `json:"idType,omitempty"`
	IDNumber              string `json:"idNumber,omitempty"`
	HealthInsurance       string `json:"healthInsurance,omitempty"`
	HealthInsuranceNumber string `json:"healthInsuranceNumber,omitempty"`
	ExtraInfo             string `json:"extraInfo,omitempty"`
	EmergencyName         string `json:"emergencyName,omitempty"`
	EmergencyContact      string `json:"emergencyContact,omitempty"`
	EmergencyRelationship string `json:"emergencyRelationship,omitempty"`
}

type PublicResolutionDTO struct {
	State   share.State       `json:"state"`
	Profile *PublicProfileDTO `json:"profile,omitempty"`
	Message string            `json:"message,omitempty"`
}

func ToPublicProfileDTO(p *profile.Profile) *PublicProfileDTO {
	return &PublicProfileDTO{
		Title:                 p.Title,
		Description:           p.Description,
		FullName:              p.Data.FullName,
		RH:                    string(p.Data.RH),
		IDType:                string(p.Data.IDType),
		IDNumber:              p.Data.IDNumber,
		HealthInsurance:       p.Data.HealthInsurance,
		HealthInsuranceNumber: p.Data.HealthInsuranceNumber,
		ExtraInfo:             p.Data.ExtraInfo,
		EmergencyName:         p.Data.EmergencyName,
		EmergencyContact:      p.Data.EmergencyContact,
		EmergencyRelationship: p.Data.EmergencyRelationship,
	}
}
