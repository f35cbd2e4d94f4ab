// package validation checks playlist migration requests before any catalog call is made.
//
// Rules are declared as struct tags and enforced with go-playground/validator. Failures are reported
// as a [models.ValidationResult] whose fields are the top-level request keys (name, description,
// tracks), never as Go errors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/desertthunder/dzx/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxTracks is the largest number of tracks accepted in one migration request.
const MaxTracks = 10

// MigrationRequest is the body of a playlist migration request. Unknown fields are ignored.
type MigrationRequest struct {
	Name        string       `json:"name" validate:"required"`
	Description *string      `json:"description" validate:"required"`
	Tracks      []TrackInput `json:"tracks" validate:"required,min=1,max=10,dive"`
}

// TrackInput is one source track of a [MigrationRequest].
type TrackInput struct {
	Title        string   `json:"title" validate:"required"`
	Artist       string   `json:"artist" validate:"required"`
	Album        string   `json:"album" validate:"required"`
	Contributors []string `json:"contributors" validate:"required,min=1,dive,required"`
	Duration     *float64 `json:"duration" validate:"required,seconds"`
	TrackCover   string   `json:"trackCover,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("seconds", wholeSeconds)
	return v
}

// wholeSeconds rejects fractional durations so they are never rounded into a match.
func wholeSeconds(fl validator.FieldLevel) bool {
	d := fl.Field().Float()
	return d >= 0 && d == math.Trunc(d)
}

// Decode reads a JSON migration request from r and validates it.
//
// Malformed JSON and wrongly typed values are reported in the result like any other rule failure.
func Decode(r io.Reader) (*MigrationRequest, models.ValidationResult) {
	dec := json.NewDecoder(r)

	var req MigrationRequest
	if err := dec.Decode(&req); err != nil {
		return nil, invalid(decodeError(err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, invalid(models.FieldError{Field: "body", Message: "invalid JSON: unexpected data after the request object"})
	}
	return &req, Validate(&req)
}

// Validate checks req against the request schema.
func Validate(req *MigrationRequest) models.ValidationResult {
	if req == nil {
		return invalid(models.FieldError{Field: "body", Message: `"body" is required`})
	}

	err := validate.Struct(req)
	if err == nil {
		return models.ValidationResult{IsValid: true, Errors: []models.FieldError{}}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid(models.FieldError{Field: "body", Message: err.Error()})
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{Field: topLevel(fe.Namespace()), Message: message(fe)})
	}
	return invalid(fields...)
}

func invalid(errs ...models.FieldError) models.ValidationResult {
	return models.ValidationResult{IsValid: false, Errors: errs}
}

// topLevel returns the request key a validator namespace such as
// "MigrationRequest.tracks[0].contributors[1]" belongs to.
func topLevel(namespace string) string {
	_, rest, ok := strings.Cut(namespace, ".")
	if !ok {
		rest = namespace
	}
	field, _, _ := strings.Cut(rest, ".")
	field, _, _ = strings.Cut(field, "[")
	return field
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", name)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%q must contain at least %s items", name, fe.Param())
		}
		return fmt.Sprintf("%q length must be at least %s characters long", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%q must contain less than or equal to %s items", name, fe.Param())
		}
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", name, fe.Param())
	case "seconds":
		return fmt.Sprintf("%q must be a whole number of seconds", name)
	default:
		return fmt.Sprintf("%q failed the %s rule", name, fe.Tag())
	}
}

func decodeError(err error) models.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		leaf := typeErr.Field[strings.LastIndex(typeErr.Field, ".")+1:]
		return models.FieldError{
			Field:   topLevel("request." + typeErr.Field),
			Message: fmt.Sprintf("%q must be a %s", leaf, jsonKind(typeErr.Type)),
		}
	}
	return models.FieldError{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.Slice:
		return "array"
	case reflect.Struct:
		return "object"
	default:
		return t.Kind().String()
	}
}

// Meta returns the name and description of the playlist to create.
func (r *MigrationRequest) Meta() models.PlaylistMeta {
	meta := models.PlaylistMeta{Name: r.Name}
	if r.Description != nil {
		meta.Description = *r.Description
	}
	return meta
}

// ToTracks converts the validated inputs to track descriptors.
func (r *MigrationRequest) ToTracks() []models.Track {
	tracks := make([]models.Track, len(r.Tracks))
	for i, in := range r.Tracks {
		var duration int
		if in.Duration != nil {
			duration = int(*in.Duration)
		}
		tracks[i] = models.Track{
			Title:        in.Title,
			Artist:       in.Artist,
			Contributors: in.Contributors,
			Duration:     duration,
			Album:        in.Album,
			Cover:        in.TrackCover,
		}
	}
	return tracks
}
