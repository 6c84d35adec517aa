package models

import "time"

// Family represents the household that owns all shared data
type Family struct {
	ID         int64
	Name       string
	InviteCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FamilyWithMembers combines a family with its member roster
type FamilyWithMembers struct {
	Family  Family
	Members []User
}

// Group is a named sub-roster within a family
type Group struct {
	ID        int64
	FamilyID  int64
	Name      string
	MemberIDs []int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
