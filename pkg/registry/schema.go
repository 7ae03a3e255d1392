package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FieldError names an offending field in a registry document along with a
// human-readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the structured validation outcome for one document fragment.
// A nil FieldErrors means the fragment validated.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e FieldErrors) add(field, message string) FieldErrors {
	return append(e, FieldError{Field: field, Message: message})
}

var validProviders = map[Provider]bool{
	ProviderMakerWorld:  true,
	ProviderPrintables:  true,
	ProviderThingiverse: true,
	ProviderDirect:      true,
	ProviderOther:       true,
}

// ValidateMeta validates the meta object of a registry document. The name is
// required; version and maintainer are optional free-form strings. Unknown
// fields are ignored.
func ValidateMeta(raw json.RawMessage) (Meta, FieldErrors) {
	var errs FieldErrors
	if len(raw) == 0 {
		return Meta{}, errs.add("meta", "is required")
	}

	var meta Meta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Meta{}, errs.add(typeErrorField("meta", err), "has the wrong type")
	}
	if meta.Name == "" {
		errs = errs.add("meta.name", "is required")
	}
	if errs != nil {
		return Meta{}, errs
	}
	return meta, nil
}

// ValidateCharacter validates a single character entry. Required: a non-empty
// id and name. URL-typed fields must parse as absolute URLs and created_at as
// RFC 3339; checks are syntactic only. gallery_images and models_3d default
// to empty, and a missing 3D model provider defaults to ProviderOther.
// Unknown fields are ignored.
func ValidateCharacter(raw json.RawMessage) (Character, FieldErrors) {
	var errs FieldErrors

	var c Character
	if err := json.Unmarshal(raw, &c); err != nil {
		return Character{}, errs.add(typeErrorField("character", err), "has the wrong type")
	}

	if c.ID == "" {
		errs = errs.add("id", "is required")
	}
	if c.Name == "" {
		errs = errs.add("name", "Name is required")
	}
	if c.CreatedAt != "" {
		if _, err := time.Parse(time.RFC3339, c.CreatedAt); err != nil {
			errs = errs.add("created_at", "must be an ISO-8601 timestamp")
		}
	}

	errs = checkURL(errs, "preview_image", c.PreviewImage)
	errs = checkURL(errs, "audio_sample_url", c.AudioSampleURL)
	errs = checkURL(errs, "audio_zip_url", c.AudioZipURL)
	errs = checkURL(errs, "registry_url", c.RegistryURL)

	if c.GalleryImages == nil {
		c.GalleryImages = []string{}
	}
	for i, img := range c.GalleryImages {
		if !isValidURL(img) {
			errs = errs.add(fmt.Sprintf("gallery_images[%d]", i), "must be a valid URL")
		}
	}

	if c.Models3D == nil {
		c.Models3D = []Model3D{}
	}
	for i, m := range c.Models3D {
		if m.Provider == "" {
			c.Models3D[i].Provider = ProviderOther
		} else if !validProviders[m.Provider] {
			errs = errs.add(fmt.Sprintf("models_3d[%d].provider", i), "must be one of makerworld, printables, thingiverse, direct, other")
		}
		if !isValidURL(m.URL) {
			errs = errs.add(fmt.Sprintf("models_3d[%d].url", i), "must be a valid URL")
		}
	}

	if errs != nil {
		return Character{}, errs
	}
	return c, nil
}

// ValidateRegistry validates a whole registry document strictly: any invalid
// character fails the document. Used when partial tolerance is not wanted;
// ingestion validates characters one by one instead.
func ValidateRegistry(raw json.RawMessage) (Registry, FieldErrors) {
	var errs FieldErrors

	var doc struct {
		Meta       json.RawMessage `json:"meta"`
		Characters json.RawMessage `json:"characters"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Registry{}, errs.add("registry", "must be a JSON object")
	}

	meta, metaErrs := ValidateMeta(doc.Meta)
	errs = append(errs, metaErrs...)

	rawCharacters, shapeErr := decodeCharacterList(doc.Characters)
	if shapeErr != nil {
		errs = append(errs, shapeErr...)
		return Registry{}, errs
	}

	characters := make([]Character, 0, len(rawCharacters))
	for i, rawChar := range rawCharacters {
		c, charErrs := ValidateCharacter(rawChar)
		for _, fe := range charErrs {
			errs = errs.add(fmt.Sprintf("characters[%d].%s", i, fe.Field), fe.Message)
		}
		if charErrs == nil {
			characters = append(characters, c)
		}
	}

	if errs != nil {
		return Registry{}, errs
	}
	return Registry{Meta: meta, Characters: characters}, nil
}

// decodeCharacterList confirms the characters field is a JSON array and
// splits it into raw entries for independent validation.
func decodeCharacterList(raw json.RawMessage) ([]json.RawMessage, FieldErrors) {
	var errs FieldErrors
	if len(raw) == 0 {
		return nil, errs.add("characters", "is required")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errs.add("characters", "must be an array")
	}
	return entries, nil
}

func checkURL(errs FieldErrors, field, value string) FieldErrors {
	if value == "" {
		return errs
	}
	if !isValidURL(value) {
		return errs.add(field, "must be a valid URL")
	}
	return errs
}

// isValidURL reports whether s parses as an absolute URL. Validity is
// syntactic only; nothing is fetched.
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// typeErrorField extracts the offending field from a JSON type error,
// falling back to the fragment name.
func typeErrorField(fragment string, err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fragment + "." + typeErr.Field
	}
	return fragment
}
