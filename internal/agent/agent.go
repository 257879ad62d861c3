package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/celebchat/persona-agent/internal/model"
	"github.com/celebchat/persona-agent/internal/repository"
	"github.com/celebchat/persona-agent/internal/session"
)

// fallbackReply is returned when a turn completes without any text part.
const fallbackReply = "Agent did not produce a final response."

// Agent drives conversation turns against the genai runtime: it forwards
// prompts on a session's chat, dispatches tool calls requested by the model,
// and returns the final textual reply.
type Agent struct {
	client            *genai.Client
	model             string
	systemInstruction string
	functionsMap      map[string]*FunctionDeclaration
	archive           repository.Archive
	logger            zerolog.Logger
}

// FunctionDeclaration describes one tool the model may call mid-turn.
type FunctionDeclaration struct {
	Name             string
	Description      string
	ParametersSchema any
	ResponseSchema   any
	FunctionCall     FunctionCallFn
}

// FunctionCallFn executes a tool call with the arguments chosen by the model.
type FunctionCallFn func(ctx context.Context, args map[string]any) (map[string]any, error)

// New creates an Agent for the given model and system instruction.
func New(client *genai.Client, modelName, systemInstruction string, logger zerolog.Logger) *Agent {
	return &Agent{
		client:            client,
		model:             modelName,
		systemInstruction: systemInstruction,
		functionsMap:      make(map[string]*FunctionDeclaration),
		logger:            logger,
	}
}

// NewWithArchive creates an Agent that additionally archives the transcript
// after every completed turn. Archive failures are logged, never fatal.
func NewWithArchive(client *genai.Client, modelName, systemInstruction string, archive repository.Archive, logger zerolog.Logger) *Agent {
	a := New(client, modelName, systemInstruction, logger)
	a.archive = archive
	return a
}

// AddFunctionCall registers a tool with the agent. Must be called before any
// session is created; chats capture the tool set at creation time.
func (a *Agent) AddFunctionCall(functionDeclaration *FunctionDeclaration) error {
	if functionDeclaration == nil {
		return fmt.Errorf("agent: function declaration cannot be nil")
	}

	if functionDeclaration.Name == "" {
		return fmt.Errorf("agent: function name cannot be empty")
	}

	if functionDeclaration.FunctionCall == nil {
		return fmt.Errorf("agent: function call implementation cannot be nil")
	}

	a.functionsMap[functionDeclaration.Name] = functionDeclaration

	return nil
}

func (a *Agent) getTools() []*genai.Tool {
	if len(a.functionsMap) == 0 {
		return nil
	}

	functions := []*genai.FunctionDeclaration{}
	for _, fd := range a.functionsMap {
		functions = append(functions, &genai.FunctionDeclaration{
			Name:                 fd.Name,
			Description:          fd.Description,
			ParametersJsonSchema: fd.ParametersSchema,
			ResponseJsonSchema:   fd.ResponseSchema,
		})
	}

	return []*genai.Tool{
		{
			FunctionDeclarations: functions,
		},
	}
}

// NewChat constructs the conversation handle backing a new session. This is
// the factory the session registry calls on first contact.
func (a *Agent) NewChat(ctx context.Context) (*genai.Chat, error) {
	chat, err := a.client.Chats.Create(ctx, a.model, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: a.systemInstruction}},
		},
		Tools: a.getTools(),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("agent: create chat: %w: %w", ErrBackendUnavailable, err)
	}

	return chat, nil
}

// Send forwards prompt on the session's chat and returns the model's final
// textual reply. Tool calls requested by the model are dispatched and their
// responses fed back until the model answers with text. No retries: backend
// failures surface to the caller wrapped in ErrBackendUnavailable.
func (a *Agent) Send(ctx context.Context, sess *session.Session, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("agent: send: %w", ErrEmptyPrompt)
	}

	var contents []*genai.Content
	err := sess.Turn(func(chat *genai.Chat) error {
		resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
		if err != nil {
			return fmt.Errorf("agent: send message: %w: %w", ErrBackendUnavailable, err)
		}

		contents, err = a.processResponse(ctx, chat, resp)
		if err != nil {
			return err
		}

		if a.archive != nil {
			if saveErr := a.archive.Save(ctx, sess.UserID, sess.ID, toModelContents(chat.History(true))); saveErr != nil {
				a.logger.Warn().Err(saveErr).
					Str("user_id", sess.UserID).
					Str("session_id", sess.ID).
					Msg("failed to archive transcript")
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	reply := model.FinalText(toModelContents(contents))
	if reply == "" {
		reply = fallbackReply
	}

	return reply, nil
}

func (a *Agent) handleFunctionCall(ctx context.Context, functionName string, args map[string]any) (map[string]any, error) {
	if fd, exists := a.functionsMap[functionName]; exists {
		return fd.FunctionCall(ctx, args)
	}

	return nil, fmt.Errorf("agent: function %s not found", functionName)
}

// processResponse collects the model's turns and dispatches any tool calls,
// feeding the results back until the model stops calling tools.
func (a *Agent) processResponse(ctx context.Context, chat *genai.Chat, resp *genai.GenerateContentResponse) ([]*genai.Content, error) {
	contents := []*genai.Content{}
	functionResponses := []genai.Part{}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part.FunctionCall != nil {
				a.logger.Info().
					Str("function", part.FunctionCall.Name).
					Msg("dispatching tool call")

				funcResp, err := a.handleFunctionCall(ctx, part.FunctionCall.Name, part.FunctionCall.Args)
				if err != nil {
					return nil, err
				}

				functionResponses = append(functionResponses, genai.Part{
					FunctionResponse: &genai.FunctionResponse{
						ID:       part.FunctionCall.ID,
						Name:     part.FunctionCall.Name,
						Response: funcResp,
					},
				})
			}
		}

		contents = append(contents, candidate.Content)
	}

	if len(functionResponses) > 0 {
		resp, err := chat.SendMessage(ctx, functionResponses...)
		if err != nil {
			return nil, fmt.Errorf("agent: send tool responses: %w: %w", ErrBackendUnavailable, err)
		}

		fContents, err := a.processResponse(ctx, chat, resp)
		if err != nil {
			return nil, err
		}

		contents = append(contents, fContents...)
	}

	return contents, nil
}

// toModelContents converts genai contents to []model.Content for archiving
// and reply extraction.
func toModelContents(contents []*genai.Content) []model.Content {
	result := make([]model.Content, 0, len(contents))
	for _, c := range contents {
		mc := model.Content{Role: c.Role, Parts: make([]model.Part, 0, len(c.Parts))}
		for _, p := range c.Parts {
			mp := model.Part{Text: p.Text}
			if p.FunctionCall != nil {
				mp.FunctionCall = &model.FunctionCall{
					ID:   p.FunctionCall.ID,
					Name: p.FunctionCall.Name,
					Args: p.FunctionCall.Args,
				}
			}
			if p.FunctionResponse != nil {
				mp.FunctionResponse = &model.FunctionResponse{
					ID:       p.FunctionResponse.ID,
					Name:     p.FunctionResponse.Name,
					Response: p.FunctionResponse.Response,
				}
			}
			mc.Parts = append(mc.Parts, mp)
		}
		result = append(result, mc)
	}
	return result
}
