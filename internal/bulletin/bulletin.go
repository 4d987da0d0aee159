// Package bulletin holds the meteorological bulletins published by the
// admin area: a date, a free-text description and one or more images.
package bulletin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/neexbeast/clima-rs/internal/apperr"
)

// ErrNotFound is returned by repositories for an unknown ID.
var ErrNotFound = apperr.New(apperr.KindNotFound, "bulletin", errors.New("bulletin not found"))

var validate = validator.New()

// Bulletin is a published bulletin.
type Bulletin struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"data"`
	Description string    `json:"descricao"`
	ImageURLs   []string  `json:"imagensUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Input is the admin-supplied content of a bulletin.
type Input struct {
	Date        string   `json:"data" validate:"required"`
	Description string   `json:"descricao" validate:"required"`
	ImageURLs   []string `json:"imagensUrl" validate:"min=1"`
}

// Normalize trims the text fields and drops blank image URLs.
func (in Input) Normalize() Input {
	out := Input{
		Date:        strings.TrimSpace(in.Date),
		Description: strings.TrimSpace(in.Description),
		ImageURLs:   make([]string, 0, len(in.ImageURLs)),
	}
	for _, u := range in.ImageURLs {
		if u = strings.TrimSpace(u); u != "" {
			out.ImageURLs = append(out.ImageURLs, u)
		}
	}
	return out
}

// Validate normalizes in and checks that every field is present.
func Validate(in Input) (Input, error) {
	in = in.Normalize()
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fieldName(fe.Field()))
			}
			return in, apperr.Validation("bulletin", "missing "+strings.Join(fields, ", "))
		}
		return in, apperr.New(apperr.KindValidation, "bulletin", err)
	}
	return in, nil
}

func fieldName(goName string) string {
	switch goName {
	case "Date":
		return "data"
	case "Description":
		return "descricao"
	case "ImageURLs":
		return "imagensUrl"
	default:
		return goName
	}
}

// Repository stores bulletins.
type Repository interface {
	List(ctx context.Context) ([]Bulletin, error)
	Get(ctx context.Context, id uuid.UUID) (*Bulletin, error)
	Create(ctx context.Context, in Input) (*Bulletin, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Bulletin, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
