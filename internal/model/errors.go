package model

import "errors"

var (
	// ErrTitleRequired is returned when a ticket creation request is missing the title.
	ErrTitleRequired = errors.New("title is required")

	// ErrContentRequired is returned when a comment creation request is missing the content.
	ErrContentRequired = errors.New("content is required")

	// ErrInvalidStatus is returned for an unknown ticket status.
	ErrInvalidStatus = errors.New("invalid ticket status")

	// ErrInvalidPriority is returned for an unknown ticket priority.
	ErrInvalidPriority = errors.New("invalid ticket priority")

	// ErrTicketNotFound is returned when a ticket is not found.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrCommentNotFound is returned when a comment is not found.
	ErrCommentNotFound = errors.New("comment not found")
)
