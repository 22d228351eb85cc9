package models

import "time"

// User is a customer account. Password may be present on stored documents
// written by other systems but is never serialized to clients.
type User struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Email       string    `json:"email" bson:"email" gorm:"index"`
	PhoneNumber string    `json:"phoneNumber" bson:"phoneNumber"`
	Name        string    `json:"name" bson:"name"`
	Password    string    `json:"-" bson:"password,omitempty"`
	Favorites   []string  `json:"favorites" bson:"favorites" gorm:"type:text;serializer:json"`
	Rentals     []string  `json:"rentals" bson:"rentals" gorm:"type:text;serializer:json"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// CreateUserRequest is the body accepted by user registration.
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Name        string `json:"name" validate:"required"`
}

// NewUser builds the stored document for a registration request.
func (r CreateUserRequest) NewUser(now time.Time) *User {
	return &User{
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Name:        r.Name,
		Favorites:   []string{},
		Rentals:     []string{},
		CreatedAt:   now,
	}
}

// UserPatch is a partial user update. The id, email and password are accepted
// on the wire and discarded: email changes do not go through this path.
type UserPatch struct {
	ID          *string   `json:"id" patch:"-"`
	Email       *string   `json:"email" patch:"-"`
	Password    *string   `json:"password" patch:"-"`
	PhoneNumber *string   `json:"phoneNumber" validate:"omitempty,min=1"`
	Name        *string   `json:"name" validate:"omitempty,min=1"`
	Favorites   *[]string `json:"favorites"`
	Rentals     *[]string `json:"rentals"`
}

// Changes returns the set fields keyed by document field name.
func (p UserPatch) Changes() map[string]interface{} { return changes(&p) }

// Apply writes the set fields onto user.
func (p UserPatch) Apply(user *User) { apply(user, &p) }

// FavoriteRequest is the body of the add-favorite call.
type FavoriteRequest struct {
	CarID string `json:"carId" validate:"required"`
}
