package validations

import (
	"context"
	"net/http"

	"botwerk-server/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ValidationError is returned for requests that fail validation. Its message is safe to show to clients.
type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

const (
	MinPasswordLength = 6
	maxNameLength     = 100
	maxTextLength     = 20000
)

var (
	personalityScore = []validation.Rule{validation.Required, validation.Min(1), validation.Max(10)}
	botStatus        = validation.In(models.BotStatusActive, models.BotStatusDraft, models.BotStatusDisabled)
)

func wrap(err error) error {
	if err != nil {
		return ValidationError(err.Error())
	}
	return nil
}

func ValidateRegister(ctx context.Context, request models.RegisterRequest) error {
	return wrap(validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Email, validation.Required, is.EmailFormat),
		validation.Field(&request.Password, validation.Required, validation.RuneLength(MinPasswordLength, 0)),
		validation.Field(&request.FirstName, validation.RuneLength(0, maxNameLength)),
		validation.Field(&request.LastName, validation.RuneLength(0, maxNameLength)),
	))
}

func ValidateLogin(ctx context.Context, request models.LoginRequest) error {
	return wrap(validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Email, validation.Required),
		validation.Field(&request.Password, validation.Required),
	))
}

func validatePersonality(p *models.BotPersonality) error {
	if p == nil {
		return nil
	}
	return validation.ValidateStruct(p,
		validation.Field(&p.Friendliness, personalityScore...),
		validation.Field(&p.Humor, personalityScore...),
		validation.Field(&p.Formality, personalityScore...),
		validation.Field(&p.DetailLevel, personalityScore...),
	)
}

func validateExamples(examples []models.Example) error {
	for i := range examples {
		ex := &examples[i]
		err := validation.ValidateStruct(ex,
			validation.Field(&ex.UserMessage, validation.RuneLength(0, maxTextLength)),
			validation.Field(&ex.BotResponse, validation.RuneLength(0, maxTextLength)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func ValidateCreateBot(ctx context.Context, request models.CreateBotRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.RuneLength(0, maxNameLength)),
		validation.Field(&request.Type, validation.RuneLength(0, maxNameLength)),
		validation.Field(&request.KnowledgeBase, validation.RuneLength(0, maxTextLength)),
		validation.Field(&request.Status, botStatus),
		validation.Field(&request.Personality, validation.By(func(any) error { return validatePersonality(request.Personality) })),
		validation.Field(&request.Examples, validation.By(func(any) error { return validateExamples(request.Examples) })),
	)
	return wrap(err)
}

func ValidateUpdateBot(ctx context.Context, request models.UpdateBotRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.NilOrNotEmpty, validation.RuneLength(0, maxNameLength)),
		validation.Field(&request.Type, validation.NilOrNotEmpty, validation.RuneLength(0, maxNameLength)),
		validation.Field(&request.KnowledgeBase, validation.RuneLength(0, maxTextLength)),
		validation.Field(&request.Status, botStatus),
		validation.Field(&request.Personality, validation.By(func(any) error { return validatePersonality(request.Personality) })),
		validation.Field(&request.Examples, validation.By(func(any) error { return validateExamples(request.Examples) })),
	)
	return wrap(err)
}

func ValidateSendMessage(ctx context.Context, request models.SendMessageRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Content, validation.Required, validation.RuneLength(0, maxTextLength)),
	)
	if err == nil {
		return nil
	}
	if request.Content != "" {
		return ValidationError("Message content is too long")
	}
	return ValidationError("Message content is required")
}

func ValidateUpdateProfile(ctx context.Context, request models.UpdateProfileRequest) error {
	return wrap(validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.FirstName, validation.RuneLength(0, maxNameLength)),
		validation.Field(&request.LastName, validation.RuneLength(0, maxNameLength)),
		validation.Field(&request.Email, validation.NilOrNotEmpty, is.EmailFormat),
	))
}

func ValidateContact(ctx context.Context, request models.ContactRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required),
		validation.Field(&request.Email, validation.Required),
		validation.Field(&request.Subject, validation.Required),
		validation.Field(&request.Message, validation.Required),
	)
	if err != nil {
		return ValidationError("Alle Felder sind erforderlich")
	}
	return nil
}
