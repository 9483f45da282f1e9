package form

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/fastygo/tracker/domain"
)

const (
	minPasswordLength  = 8
	maxSimilarityRatio = 0.7
)

// UserLookup answers the uniqueness questions of registration.
type UserLookup interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// RegisterForm creates an account.
type RegisterForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`

	Errors domain.FieldErrors `form:"-" validate:"-"`
}

func NewRegisterForm() *RegisterForm {
	return &RegisterForm{Errors: domain.FieldErrors{}}
}

// Bind reads the submission. Passwords are taken verbatim.
func (f *RegisterForm) Bind(get Getter) {
	f.Username = trim(get, "username")
	f.Email = trim(get, "email")
	if get != nil {
		f.Password1 = get("password1")
		f.Password2 = get("password2")
	}
}

// Validate runs every rule. Username and email uniqueness are looked up
// independently and reported on their own fields.
func (f *RegisterForm) Validate(ctx context.Context, users UserLookup) (bool, error) {
	errs := check(f)

	if !errs.Has("username") {
		taken, err := users.UsernameExists(ctx, f.Username)
		if err != nil {
			return false, err
		}
		if taken {
			errs.Add("username", domain.MsgUsernameTaken)
		}
	}
	if !errs.Has("email") {
		taken, err := users.EmailExists(ctx, f.Email)
		if err != nil {
			return false, err
		}
		if taken {
			errs.Add("email", domain.MsgEmailTaken)
		}
	}

	if !errs.Has("password1") && !errs.Has("password2") {
		if f.Password1 != f.Password2 {
			errs.Add("password2", domain.MsgPasswordMismatch)
		} else {
			for _, msg := range passwordProblems(f.Password2, f.Username, f.Email) {
				errs.Add("password2", msg)
			}
		}
	}

	f.Errors = errs
	return errs.Empty(), nil
}

// User returns the account described by a valid form, without a password
// hash.
func (f *RegisterForm) User() *domain.User {
	return &domain.User{
		Username: f.Username,
		Email:    f.Email,
		IsActive: true,
	}
}

func (f *RegisterForm) View() View {
	return buildView(f.Errors,
		field("username", f.Username, f.Errors),
		field("email", f.Email, f.Errors),
		field("password1", "", f.Errors),
		field("password2", "", f.Errors),
	)
}

func passwordProblems(password string, attributes ...string) []string {
	var problems []string
	if len([]rune(password)) < minPasswordLength {
		problems = append(problems, domain.MsgPasswordTooShort)
	}
	if isNumeric(password) {
		problems = append(problems, domain.MsgPasswordNumeric)
	}
	if tooSimilar(password, attributes...) {
		problems = append(problems, domain.MsgPasswordSimilar)
	}
	return problems
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

var attributeSplit = regexp.MustCompile(`\W+`)

// tooSimilar compares the password with each attribute and with each
// word of it.
func tooSimilar(password string, attributes ...string) bool {
	password = strings.ToLower(password)
	for _, attr := range attributes {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		parts := append(attributeSplit.Split(attr, -1), attr)
		for _, part := range parts {
			if part != "" && similarity(password, part) >= maxSimilarityRatio {
				return true
			}
		}
	}
	return false
}

// similarity is 2*LCS/(len(a)+len(b)) over runes.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return 2 * float64(prev[len(rb)]) / float64(len(ra)+len(rb))
}
