package subfile

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sobadon/cyberd/domain/repository"
	"github.com/sobadon/cyberd/internal/errutil"
)

// Store keeps the subscriber list as a plain text file, one address per
// line. The whole file is rewritten on every mutation. Addresses are
// opaque strings compared byte-for-byte; insertion order is preserved.
//
// Concurrent mutation from simultaneous requests is not synchronized,
// last write wins. Same behavior as the backing-file format itself:
// no header, no checksum, no lock file.
type Store struct {
	path   string
	emails []string
}

func New(path string) (*Store, error) {
	s := &Store{path: path}
	err := s.load()
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ repository.SubscriberStore = (*Store)(nil)

// load reads the backing file. A missing file means an empty list, not
// an error. Blank lines are ignored.
func (s *Store) load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.emails = nil
		return nil
	}
	if err != nil {
		return errors.Wrap(errutil.ErrSubscriberStore, err.Error())
	}

	var emails []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		emails = append(emails, line)
	}
	s.emails = emails
	return nil
}

func (s *Store) save() error {
	var sb strings.Builder
	for _, email := range s.emails {
		sb.WriteString(email)
		sb.WriteString("\n")
	}
	err := os.WriteFile(s.path, []byte(sb.String()), 0600)
	if err != nil {
		return errors.Wrap(errutil.ErrSubscriberStore, err.Error())
	}
	return nil
}

func (s *Store) Add(email string) (bool, error) {
	if email == "" {
		return false, errors.Wrap(errutil.ErrInvalidEmail, "empty address")
	}
	for _, existing := range s.emails {
		if existing == email {
			return false, nil
		}
	}
	s.emails = append(s.emails, email)
	err := s.save()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Remove(email string) (bool, error) {
	for i, existing := range s.emails {
		if existing == email {
			s.emails = append(s.emails[:i], s.emails[i+1:]...)
			err := s.save()
			if err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) List() []string {
	out := make([]string, len(s.emails))
	copy(out, s.emails)
	return out
}

func (s *Store) Count() int {
	return len(s.emails)
}
