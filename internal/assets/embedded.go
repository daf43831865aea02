package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*
var styles embed.FS

// Built-in stylesheet names.
const (
	BaseStyle      = "base"
	UtilitiesStyle = "utilities"
)

// LoadStyle loads an embedded CSS style by name.
// The name should not include the .css extension.
func LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// MustLoadStyle is LoadStyle for built-in names. It panics on error.
func MustLoadStyle(name string) string {
	css, err := LoadStyle(name)
	if err != nil {
		panic(err)
	}
	return css
}
