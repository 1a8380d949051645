// Package dbconfig turns the decrypted configuration document into database
// connection parameters.
package dbconfig

import (
	"log/slog"
	"strings"

	"github.com/zeebo/errs"
	"gopkg.in/ini.v1"

	"github.com/mustafasaltik/salesetl/internal/secret"
)

// Error is the class of configuration errors.
var Error = errs.Class("config")

// DefaultSection is the section holding the PostgreSQL settings.
const DefaultSection = "postgresql"

// Params are the settings needed to reach the store. Port is kept in its
// literal form; the store converts it.
type Params struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// LogValue implements slog.LogValuer without the password.
func (p Params) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", p.User),
		slog.String("host", p.Host),
		slog.String("port", p.Port),
		slog.String("database", p.Database),
	)
}

var required = []string{"user", "password", "host", "port", "database"}

// Parse reads an INI document and returns the parameters from section.
// Key names are case-insensitive; values are taken verbatim, without inline
// comment stripping or unquoting. Indented lines continue the previous
// value, joined with a newline. Keys absent from section are looked up in
// [DEFAULT]. Every required key must be present in one of the two.
func Parse(plaintext, section string) (Params, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:            true,
		IgnoreInlineComment:        true,
		PreserveSurroundedQuote:    true,
		AllowPythonMultilineValues: true,
	}, []byte(plaintext))
	if err != nil {
		return Params{}, Error.New("parse: %w", err)
	}

	sec, err := cfg.GetSection(section)
	if err != nil {
		return Params{}, Error.New("section [%s] not found", section)
	}
	defaults := cfg.Section(ini.DefaultSection)

	values := make(map[string]string, len(required))
	var missing []string
	for _, name := range required {
		switch {
		case sec.HasKey(name):
			values[name] = sec.Key(name).String()
		case defaults.HasKey(name):
			values[name] = defaults.Key(name).String()
		default:
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Params{}, Error.New("section [%s] is missing %s", section, strings.Join(missing, ", "))
	}

	return Params{
		User:     values["user"],
		Password: values["password"],
		Host:     values["host"],
		Port:     values["port"],
		Database: values["database"],
	}, nil
}

// FromSealedFile decrypts the blob at path with store and parses it.
func FromSealedFile(store *secret.Store, path, section string) (Params, error) {
	plaintext, err := store.DecryptFile(path)
	if err != nil {
		return Params{}, err
	}
	return Parse(plaintext, section)
}
