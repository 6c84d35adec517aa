package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/database"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/models"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/security"
)

// FamilyRepository handles database operations for families and groups
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family with a fresh invite code
func (r *FamilyRepository) CreateFamily(name string) (*models.Family, error) {
	inviteCode := security.GenerateInviteCode()

	query := "INSERT INTO families (name, invite_code) VALUES (?, ?)"
	id, err := r.db.ExecReturningID(query, name, inviteCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return &models.Family{
		ID:         id,
		Name:       name,
		InviteCode: inviteCode,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := "SELECT id, name, invite_code, created_at, updated_at FROM families WHERE id = ?"
	family := &models.Family{}
	err := r.db.QueryRow(query, familyID).Scan(
		&family.ID,
		&family.Name,
		&family.InviteCode,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// GetFamilyByInviteCode retrieves a family by its invite code
func (r *FamilyRepository) GetFamilyByInviteCode(code string) (*models.Family, error) {
	query := "SELECT id, name, invite_code, created_at, updated_at FROM families WHERE invite_code = ?"
	family := &models.Family{}
	err := r.db.QueryRow(query, code).Scan(
		&family.ID,
		&family.Name,
		&family.InviteCode,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family by invite code: %w", err)
	}
	return family, nil
}

// UpdateFamilyName renames a family
func (r *FamilyRepository) UpdateFamilyName(familyID int64, name string) error {
	query := "UPDATE families SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, name, familyID); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// CreateGroup creates a named sub-roster within a family
func (r *FamilyRepository) CreateGroup(familyID int64, name string, memberIDs []int64) (*models.Group, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO groups (family_id, name) VALUES (?, ?)"
	groupID, err := tx.ExecReturningID(query, familyID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	for _, userID := range memberIDs {
		query = "INSERT INTO group_members (group_id, user_id) VALUES (?, ?)"
		if _, err := tx.Exec(query, groupID, userID); err != nil {
			return nil, fmt.Errorf("failed to add group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Group{
		ID:        groupID,
		FamilyID:  familyID,
		Name:      name,
		MemberIDs: memberIDs,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetGroup retrieves a group scoped to a family
func (r *FamilyRepository) GetGroup(familyID, groupID int64) (*models.Group, error) {
	query := "SELECT id, family_id, name, created_at, updated_at FROM groups WHERE id = ? AND family_id = ?"
	group := &models.Group{}
	err := r.db.QueryRow(query, groupID, familyID).Scan(
		&group.ID,
		&group.FamilyID,
		&group.Name,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	memberIDs, err := r.getGroupMemberIDs(groupID)
	if err != nil {
		return nil, err
	}
	group.MemberIDs = memberIDs
	return group, nil
}

// ListGroups retrieves all groups in a family
func (r *FamilyRepository) ListGroups(familyID int64) ([]models.Group, error) {
	query := "SELECT id, family_id, name, created_at, updated_at FROM groups WHERE family_id = ? ORDER BY name ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var group models.Group
		if err := rows.Scan(&group.ID, &group.FamilyID, &group.Name, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		memberIDs, err := r.getGroupMemberIDs(groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].MemberIDs = memberIDs
	}
	return groups, nil
}

// UpdateGroup renames a group and replaces its member set
func (r *FamilyRepository) UpdateGroup(familyID, groupID int64, name string, memberIDs []int64) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "UPDATE groups SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND family_id = ?"
	result, err := tx.Exec(query, name, groupID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to update group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return 0, nil
	}

	if _, err := tx.Exec("DELETE FROM group_members WHERE group_id = ?", groupID); err != nil {
		return 0, fmt.Errorf("failed to clear group members: %w", err)
	}
	for _, userID := range memberIDs {
		if _, err := tx.Exec("INSERT INTO group_members (group_id, user_id) VALUES (?, ?)", groupID, userID); err != nil {
			return 0, fmt.Errorf("failed to add group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return affected, nil
}

// DeleteGroup removes a group scoped to a family, returning the number
// of rows deleted
func (r *FamilyRepository) DeleteGroup(familyID, groupID int64) (int64, error) {
	query := "DELETE FROM groups WHERE id = ? AND family_id = ?"
	result, err := r.db.Exec(query, groupID, familyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete group: %w", err)
	}
	return result.RowsAffected()
}

func (r *FamilyRepository) getGroupMemberIDs(groupID int64) ([]int64, error) {
	query := "SELECT user_id FROM group_members WHERE group_id = ? ORDER BY id ASC"
	rows, err := r.db.Query(query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
