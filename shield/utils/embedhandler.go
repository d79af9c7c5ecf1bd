package utils

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/gatekeep/shield/shield/config"
)

// ResponseHandler provides standardized response methods for commands and components
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// ErrorType represents different categories of errors for consistent handling
type ErrorType int

const (
	// UserError - User input issues, validation failures, parameter problems
	UserError ErrorType = iota
	// SystemError - Database failures, network issues, internal server errors
	SystemError
	// NotFoundError - Requested resources don't exist
	NotFoundError
	// PermissionError - Unauthorized actions, access denied
	PermissionError
)

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case PermissionError:
		return "🚫"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError:
		return config.WarningColor
	case NotFoundError:
		return config.InfoColor
	default:
		return config.ErrorColor
	}
}

// ErrorEmbed builds the embed shown for a classified error.
func ErrorEmbed(errorType ErrorType, message string) discord.Embed {
	return discord.Embed{
		Description: getErrorPrefix(errorType) + " " + message,
		Color:       getErrorColor(errorType),
	}
}

func SuccessEmbed(message string) discord.Embed {
	return discord.Embed{
		Description: "✅ " + message,
		Color:       config.SuccessColor,
	}
}

func ephemeral(embed discord.Embed) discord.MessageCreate {
	return discord.MessageCreate{
		Embeds: []discord.Embed{embed},
		Flags:  discord.MessageFlagEphemeral,
	}
}

// Respond sends msg as the interaction response of a command, component or
// modal event.
func (h *ResponseHandler) Respond(event any, msg discord.MessageCreate) error {
	switch e := event.(type) {
	case *handler.CommandEvent:
		return e.CreateMessage(msg)
	case *handler.ComponentEvent:
		return e.CreateMessage(msg)
	case *handler.ModalEvent:
		return e.CreateMessage(msg)
	default:
		return fmt.Errorf("unsupported event type %T", event)
	}
}

// CreateClassifiedError replies with an ephemeral error embed to any
// interaction event.
func (h *ResponseHandler) CreateClassifiedError(event any, errorType ErrorType, message string) error {
	return h.Respond(event, ephemeral(ErrorEmbed(errorType, message)))
}

func (h *ResponseHandler) CreateUserError(event any, message string) error {
	return h.CreateClassifiedError(event, UserError, message)
}

func (h *ResponseHandler) CreateSystemError(event any, message string) error {
	return h.CreateClassifiedError(event, SystemError, message)
}

func (h *ResponseHandler) CreateNotFoundError(event any, resource, identifier string) error {
	return h.CreateClassifiedError(event, NotFoundError, fmt.Sprintf("%s '%s' not found", resource, identifier))
}

func (h *ResponseHandler) CreatePermissionError(event any, action string) error {
	return h.CreateClassifiedError(event, PermissionError, fmt.Sprintf("You don't have permission to %s", action))
}

// HandleSuccess replies with an ephemeral success embed.
func (h *ResponseHandler) HandleSuccess(event any, message string) error {
	return h.Respond(event, ephemeral(SuccessEmbed(message)))
}

// Classification maps domain errors onto user-facing categories.
type Classification struct {
	Err     error
	Type    ErrorType
	Message string
}

// Classify returns the first classification whose error matches err, or a
// generic system error.
func Classify(err error, known ...Classification) (ErrorType, string) {
	for _, c := range known {
		if errors.Is(err, c.Err) {
			return c.Type, c.Message
		}
	}
	return SystemError, "Something went wrong, please try again later."
}

func Ptr[T any](v T) *T {
	return &v
}
