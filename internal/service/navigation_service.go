package service

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/wellness-api/internal/models"
	appErrors "github.com/noah-isme/wellness-api/pkg/errors"
)

//go:embed navigation/menu.yaml
var navigationFS embed.FS

type navigationFile struct {
	Roles    map[models.UserRole][]models.NavItem `yaml:"roles"`
	UserMenu []models.NavItem                     `yaml:"userMenu"`
}

// NavigationService composes the dashboard shell for a role.
type NavigationService struct {
	menus    map[models.UserRole][]models.NavItem
	userMenu []models.NavItem
}

// NewNavigationService loads the embedded menu definition.
func NewNavigationService() (*NavigationService, error) {
	raw, err := navigationFS.ReadFile("navigation/menu.yaml")
	if err != nil {
		return nil, fmt.Errorf("read navigation menu: %w", err)
	}
	return parseNavigation(raw)
}

func parseNavigation(raw []byte) (*NavigationService, error) {
	var file navigationFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode navigation menu: %w", err)
	}
	for _, role := range models.AllRoles {
		if len(file.Roles[role]) == 0 {
			return nil, fmt.Errorf("navigation menu has no entries for role %q", role)
		}
	}
	return &NavigationService{menus: file.Roles, userMenu: file.UserMenu}, nil
}

// ForRole returns the shell for the given role and user.
func (s *NavigationService) ForRole(role models.UserRole, user models.UserInfo) (models.Navigation, error) {
	items, ok := s.menus[role]
	if !ok {
		return models.Navigation{}, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
	return models.Navigation{
		Role:     role,
		Home:     models.HomeRoute(role),
		Items:    append([]models.NavItem(nil), items...),
		UserMenu: append([]models.NavItem(nil), s.userMenu...),
		User:     user,
	}, nil
}
