package services

import "errors"

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrMemberNotFound      = errors.New("member not found in category")
	ErrUsernameNotFound    = errors.New("no user found with that username")
	ErrAlreadyMember       = errors.New("user is already a member of this category")
	ErrIneligibleTier      = errors.New("only pro and pro+ users can be added to group categories")
	ErrNotCreator          = errors.New("only the creator can perform this action")
	ErrCannotRemoveCreator = errors.New("the creator cannot be removed from the category")
)
