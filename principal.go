package fspath

import (
	"os/user"
	"strconv"

	fserrors "github.com/jmgilman/go/fspath/errors"
)

// UserPrincipal identifies a user by name and numeric id.
type UserPrincipal struct {
	Name string
	ID   string
}

func (u UserPrincipal) String() string {
	return u.Name
}

// GroupPrincipal identifies a group by name and numeric id.
type GroupPrincipal struct {
	Name string
	ID   string
}

func (g GroupPrincipal) String() string {
	return g.Name
}

// UserPrincipalLookupService resolves user and group names.
type UserPrincipalLookupService struct {
	fsys *FileSystem
}

// LookupPrincipalByName resolves a user name or numeric id.
func (s *UserPrincipalLookupService) LookupPrincipalByName(name string) (UserPrincipal, error) {
	if err := s.fsys.checkOpen("lookup"); err != nil {
		return UserPrincipal{}, err
	}
	u, err := user.Lookup(name)
	if err != nil {
		if _, convErr := strconv.Atoi(name); convErr == nil {
			u, err = user.LookupId(name)
		}
	}
	if err != nil {
		return UserPrincipal{}, fserrors.WrapWithContext(err, fserrors.CodeNotFound, "user not found",
			map[string]any{"user": name})
	}
	return UserPrincipal{Name: u.Username, ID: u.Uid}, nil
}

// LookupPrincipalByGroupName resolves a group name or numeric id.
func (s *UserPrincipalLookupService) LookupPrincipalByGroupName(name string) (GroupPrincipal, error) {
	if err := s.fsys.checkOpen("lookup"); err != nil {
		return GroupPrincipal{}, err
	}
	g, err := user.LookupGroup(name)
	if err != nil {
		if _, convErr := strconv.Atoi(name); convErr == nil {
			g, err = user.LookupGroupId(name)
		}
	}
	if err != nil {
		return GroupPrincipal{}, fserrors.WrapWithContext(err, fserrors.CodeNotFound, "group not found",
			map[string]any{"group": name})
	}
	return GroupPrincipal{Name: g.Name, ID: g.Gid}, nil
}

// userByID names a uid, falling back to the number when the user database
// has no entry.
func userByID(uid int) UserPrincipal {
	id := strconv.Itoa(uid)
	if u, err := user.LookupId(id); err == nil {
		return UserPrincipal{Name: u.Username, ID: id}
	}
	return UserPrincipal{Name: id, ID: id}
}

func groupByID(gid int) GroupPrincipal {
	id := strconv.Itoa(gid)
	if g, err := user.LookupGroupId(id); err == nil {
		return GroupPrincipal{Name: g.Name, ID: id}
	}
	return GroupPrincipal{Name: id, ID: id}
}

func principalID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, fserrors.WrapWithContext(err, fserrors.CodeInvalidInput, "principal has no numeric id",
			map[string]any{"id": id})
	}
	return n, nil
}
