package search

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io/fs"
	"strings"

	"github.com/petflix/petflix/filesystem"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/where"
	"github.com/spf13/afero"
)

//go:embed synonyms.json
var builtinSynonyms []byte

// Synonyms maps a lowercased keyword to alternate search terms.
type Synonyms map[string][]string

// Lookup returns the alternates of keyword, if any.
func (s Synonyms) Lookup(keyword string) []string {
	return s[normalize(keyword)]
}

// DefaultSynonyms returns the built-in table.
func DefaultSynonyms() Synonyms {
	var s Synonyms
	if err := json.Unmarshal(builtinSynonyms, &s); err != nil {
		panic(err)
	}
	return s.normalized()
}

// LoadSynonyms returns the built-in table with the user's synonyms.json merged over it.
// An unreadable user file is logged and ignored.
func LoadSynonyms() Synonyms {
	s := DefaultSynonyms()

	contents, err := afero.ReadFile(filesystem.API(), where.Synonyms())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warnf("search: reading synonyms: %v", err)
		}
		return s
	}

	var user Synonyms
	if err := json.Unmarshal(contents, &user); err != nil {
		log.Warnf("search: parsing %s: %v", where.Synonyms(), err)
		return s
	}

	for k, v := range user.normalized() {
		s[k] = v
	}
	return s
}

func (s Synonyms) normalized() Synonyms {
	out := make(Synonyms, len(s))
	for k, v := range s {
		out[normalize(k)] = v
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
