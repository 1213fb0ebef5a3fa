package subscriber

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	MaxNameLength       = 120
	MaxEmailLength      = 254
	MaxEmailLocalLength = 64
	MinEmailTLDLength   = 2

	emailPartsRuleTag = "emailparts"
)

var (
	nameRules     = "max=" + strconv.Itoa(MaxNameLength) + ",alphanum"
	emailRules    = "max=" + strconv.Itoa(MaxEmailLength) + ",email," + emailPartsRuleTag
	passwordRules = passwordRuleTag
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	err := v.RegisterValidation(passwordRuleTag, func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}

	err = v.RegisterValidation(emailPartsRuleTag, func(fl validator.FieldLevel) bool {
		return hasValidEmailParts(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}

	return v
}

// hasValidEmailParts checks what the email tag leaves open: a local part of
// at most MaxEmailLocalLength characters and a top-level label of at least
// MinEmailTLDLength letters (or a punycode xn-- label).
func hasValidEmailParts(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}

	if utf8.RuneCountInString(email[:at]) > MaxEmailLocalLength {
		return false
	}

	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot < 0 {
		return false
	}

	tld := strings.ToLower(domain[dot+1:])
	if strings.HasPrefix(tld, "xn--") && len(tld) > len("xn--") {
		return true
	}

	if utf8.RuneCountInString(tld) < MinEmailTLDLength {
		return false
	}

	for _, r := range tld {
		if !unicode.IsLetter(r) {
			return false
		}
	}

	return true
}

// CreateSubscriberRequest is the decoded creation payload. A nil field means
// the key was missing, null, or not a string.
type CreateSubscriberRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func NewCreateSubscriberRequest(name, email, password string) CreateSubscriberRequest {
	return CreateSubscriberRequest{Name: &name, Email: &email, Password: &password}
}

// ParseCreateRequest decodes a raw body. Anything other than a non-empty JSON
// object is ErrInvalidPayload; field types are resolved later by Validate so
// that the first failing field in check order wins.
func ParseCreateRequest(body []byte) (CreateSubscriberRequest, error) {
	var raw any

	if err := json.Unmarshal(body, &raw); err != nil {
		return CreateSubscriberRequest{}, ErrInvalidPayload
	}

	obj, ok := raw.(map[string]any)
	if !ok || len(obj) == 0 {
		return CreateSubscriberRequest{}, ErrInvalidPayload
	}

	return CreateSubscriberRequest{
		Name:     stringField(obj, "name"),
		Email:    stringField(obj, "email"),
		Password: stringField(obj, "password"),
	}, nil
}

func stringField(obj map[string]any, key string) *string {
	s, ok := obj[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// Validate applies the creation rules in order and returns the first failure.
func (r CreateSubscriberRequest) Validate() error {
	name := deref(r.Name)
	if name == "" {
		return ErrMissingName
	}

	if validate.Var(name, nameRules) != nil {
		return ErrInvalidName
	}

	email := deref(r.Email)
	if email == "" || validate.Var(email, emailRules) != nil {
		return ErrInvalidEmail
	}

	password := deref(r.Password)
	if password == "" {
		return ErrInvalidPassword
	}

	if validate.Var(password, passwordRules) != nil {
		return ErrWeakPassword
	}

	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}

// NewFromCreateRequest builds the record to persist. The request must already
// be valid.
func NewFromCreateRequest(req CreateSubscriberRequest, id, passwordHash string, now time.Time) Subscriber {
	return Subscriber{
		ID:           id,
		Name:         deref(req.Name),
		Email:        NormalizeEmail(deref(req.Email)),
		PasswordHash: passwordHash,
		CreatedAt:    now.UTC(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
