package sim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// A Name is a hierarchical name that includes a series of tokens separated
// by dots, for example "Line[3].Segment[2]".
type Name struct {
	Tokens []NameToken
}

// NameToken is a token of a name.
type NameToken struct {
	ElemName string
	Index    []int
}

// ParseName parses a name string. It reports malformed brackets and indices.
func ParseName(sname string) (Name, error) {
	parts := strings.Split(sname, ".")
	name := Name{Tokens: make([]NameToken, 0, len(parts))}

	for _, part := range parts {
		token, err := parseNameToken(part)
		if err != nil {
			return Name{}, err
		}

		name.Tokens = append(name.Tokens, token)
	}

	return name, nil
}

func parseNameToken(token string) (NameToken, error) {
	open := strings.IndexByte(token, '[')
	if open < 0 {
		if strings.ContainsRune(token, ']') {
			return NameToken{}, errors.New("bracket must match")
		}

		return NameToken{ElemName: token}, nil
	}

	t := NameToken{ElemName: token[:open]}
	rest := token[open:]

	for rest != "" {
		if rest[0] != '[' {
			return NameToken{}, errors.New("bracket must match")
		}

		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return NameToken{}, errors.New("bracket must match")
		}

		index, err := strconv.Atoi(rest[1:end])
		if err != nil || index < 0 {
			return NameToken{}, errors.New("index must be a non-negative integer")
		}

		t.Index = append(t.Index, index)
		rest = rest[end+1:]
	}

	return t, nil
}

// ValidateName checks a name against the naming convention.
//  1. It is organized hierarchically with dots, "A.B.C".
//  2. Individual elements are not empty, so "A..B" is not valid.
//  3. Elements are capitalized CamelCase without "_", "-" or quotes.
//  4. Elements in a series use square-bracket indices, "Line[3]".
func ValidateName(name string) error {
	n, err := ParseName(name)
	if err != nil {
		return fmt.Errorf("name %q is not valid: %w", name, err)
	}

	for _, token := range n.Tokens {
		if err := validateToken(token); err != nil {
			return fmt.Errorf("name %q is not valid: %w", name, err)
		}
	}

	return nil
}

// NameMustBeValid panics if the name does not follow the naming convention.
func NameMustBeValid(name string) {
	if err := ValidateName(name); err != nil {
		panic(err.Error())
	}
}

func validateToken(token NameToken) error {
	if token.ElemName == "" {
		return errors.New("element must not be empty")
	}

	if strings.ContainsAny(token.ElemName, "_-\"'") {
		return errors.New("element must not contain _, -, or quotes")
	}

	if token.ElemName[0] < 'A' || token.ElemName[0] > 'Z' {
		return errors.New("element must start with a capital letter")
	}

	return nil
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name from a parent name, an element name and an
// index.
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
