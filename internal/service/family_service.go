package service

import (
	"context"
	"fmt"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/repository"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

// FamilyService handles family membership, preferences and groups
type FamilyService struct {
	familyRepo   *repository.FamilyRepository
	userRepo     *repository.UserRepository
	emailService *EmailService
}

// NewFamilyService creates a new family service
func NewFamilyService(familyRepo *repository.FamilyRepository, userRepo *repository.UserRepository, emailService *EmailService) *FamilyService {
	return &FamilyService{
		familyRepo:   familyRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// GetFamily returns a family with its members
func (s *FamilyService) GetFamily(familyID int64) (*models.FamilyWithMembers, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrNotFound
	}

	members, err := s.userRepo.GetFamilyRoster(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family members: %w", err)
	}

	return &models.FamilyWithMembers{
		Family:  *family,
		Members: members,
	}, nil
}

// GetRoster returns the members of a family
func (s *FamilyService) GetRoster(familyID int64) ([]models.User, error) {
	return s.userRepo.GetFamilyRoster(familyID)
}

// RenameFamily changes a family's name. Parent only.
func (s *FamilyService) RenameFamily(actor *models.User, name string) error {
	if !actor.IsParent() {
		return ErrForbidden
	}
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if err := s.familyRepo.UpdateFamilyName(actor.FamilyID, name); err != nil {
		return fmt.Errorf("failed to rename family: %w", err)
	}
	return nil
}

// SendInvite emails a family's invite code to an address. Parent only.
func (s *FamilyService) SendInvite(ctx context.Context, actor *models.User, toEmail string) error {
	if !actor.IsParent() {
		return ErrForbidden
	}
	if err := validation.ValidateEmail(toEmail); err != nil {
		return err
	}

	family, err := s.familyRepo.GetFamilyByID(actor.FamilyID)
	if err != nil {
		return fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return ErrNotFound
	}

	if err := s.emailService.SendInviteEmail(ctx, toEmail, family.Name, family.InviteCode); err != nil {
		return fmt.Errorf("failed to send invite: %w", err)
	}
	return nil
}

// JoinFamily moves a user into the family matching an invite code. The
// user's first family is remembered so they can return home later.
// Joiners arrive as children regardless of their previous role.
func (s *FamilyService) JoinFamily(user *models.User, inviteCode string) (*models.Family, error) {
	family, err := s.familyRepo.GetFamilyByInviteCode(inviteCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check invite code: %w", err)
	}
	if family == nil {
		return nil, ErrInvalidInviteCode
	}
	if family.ID == user.FamilyID {
		return family, nil
	}

	if err := s.userRepo.SwitchFamily(user.ID, family.ID, models.RoleChild); err != nil {
		return nil, fmt.Errorf("failed to join family: %w", err)
	}
	return family, nil
}

// ReturnHome moves a user back to their original family, restoring
// parent status there
func (s *FamilyService) ReturnHome(user *models.User) error {
	if user.OriginalFamilyID == 0 || user.OriginalFamilyID == user.FamilyID {
		return ErrNotFound
	}
	if err := s.userRepo.SwitchFamily(user.ID, user.OriginalFamilyID, models.RoleParent); err != nil {
		return fmt.Errorf("failed to return to original family: %w", err)
	}
	return nil
}

// PromoteMember changes a family member's role. Parent only, and the
// member must belong to the actor's family.
func (s *FamilyService) PromoteMember(actor *models.User, memberID int64, role string) error {
	if !actor.IsParent() {
		return ErrForbidden
	}
	if role != models.RoleParent && role != models.RoleChild {
		return validation.ValidationError{Field: "role", Message: "role must be parent or child"}
	}

	member, err := s.userRepo.GetUserByID(memberID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil || member.FamilyID != actor.FamilyID {
		return ErrNotFound
	}

	if err := s.userRepo.UpdateRole(memberID, role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

// UpdateSharedFeatures updates which feature areas a user shares with
// the family
func (s *FamilyService) UpdateSharedFeatures(userID int64, features models.SharedFeatures) error {
	if err := s.userRepo.UpdateSharedFeatures(userID, features); err != nil {
		return fmt.Errorf("failed to update shared features: %w", err)
	}
	return nil
}

// UpdateDietaryPreferences updates a user's dietary preferences
func (s *FamilyService) UpdateDietaryPreferences(userID int64, prefs models.DietaryPreferences) error {
	if err := s.userRepo.UpdateDietaryPreferences(userID, prefs); err != nil {
		return fmt.Errorf("failed to update dietary preferences: %w", err)
	}
	return nil
}

// CreateGroup creates a named subset of family members. Parent only.
// Member IDs outside the family are dropped.
func (s *FamilyService) CreateGroup(actor *models.User, name string, memberIDs []int64) (*models.Group, error) {
	if !actor.IsParent() {
		return nil, ErrForbidden
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	memberIDs, err := s.filterToFamily(actor.FamilyID, memberIDs)
	if err != nil {
		return nil, err
	}

	group, err := s.familyRepo.CreateGroup(actor.FamilyID, name, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// GetGroup returns a group in the actor's family
func (s *FamilyService) GetGroup(familyID, groupID int64) (*models.Group, error) {
	group, err := s.familyRepo.GetGroup(familyID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, ErrNotFound
	}
	return group, nil
}

// ListGroups returns all groups in a family
func (s *FamilyService) ListGroups(familyID int64) ([]models.Group, error) {
	return s.familyRepo.ListGroups(familyID)
}

// UpdateGroup renames a group and replaces its member set. Parent only.
func (s *FamilyService) UpdateGroup(actor *models.User, groupID int64, name string, memberIDs []int64) error {
	if !actor.IsParent() {
		return ErrForbidden
	}
	if err := validation.ValidateName(name); err != nil {
		return err
	}

	memberIDs, err := s.filterToFamily(actor.FamilyID, memberIDs)
	if err != nil {
		return err
	}

	affected, err := s.familyRepo.UpdateGroup(actor.FamilyID, groupID, name, memberIDs)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteGroup removes a group. Parent only.
func (s *FamilyService) DeleteGroup(actor *models.User, groupID int64) error {
	if !actor.IsParent() {
		return ErrForbidden
	}

	affected, err := s.familyRepo.DeleteGroup(actor.FamilyID, groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// filterToFamily drops IDs that are not members of the family
func (s *FamilyService) filterToFamily(familyID int64, memberIDs []int64) ([]int64, error) {
	roster, err := s.userRepo.GetFamilyRoster(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family members: %w", err)
	}

	inFamily := make(map[int64]bool, len(roster))
	for _, member := range roster {
		inFamily[member.ID] = true
	}

	var filtered []int64
	for _, id := range memberIDs {
		if inFamily[id] {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}
