package service

import (
	"context"
	"fmt"

	"jurisperform-be/internal/constant"
	"jurisperform-be/internal/dto"
	"jurisperform-be/internal/entity"
	"jurisperform-be/internal/repository/specification"
	"jurisperform-be/internal/repository/unitofwork"
	"jurisperform-be/pkg/course"
	"jurisperform-be/pkg/events"
	"jurisperform-be/pkg/tutor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher sends domain events to the outward bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConversationService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	List(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.ConversationListResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ConversationWithMessagesResponse, error)
	SaveMessage(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.SaveMessageRequest) (*dto.MessageResponse, error)
	UpdateTitle(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateConversationTitleRequest) error
	UpdateSelection(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateConversationSelectionRequest) (*dto.ConversationResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type conversationService struct {
	uowFactory     unitofwork.RepositoryFactory
	selections     SelectionStore
	eventPublisher EventPublisher
	log            *zap.Logger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	selections SelectionStore,
	eventPublisher EventPublisher,
	log *zap.Logger,
) IConversationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &conversationService{
		uowFactory:     uowFactory,
		selections:     selections,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func toConversationResponse(c *entity.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		Id:               c.Id,
		UserId:           c.UserId,
		Title:            c.Title,
		SelectedLevel:    optional(c.SelectedLevel),
		SelectedCourseId: optional(c.SelectedCourseId),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func toMessageResponse(m *entity.Message) dto.MessageResponse {
	content := m.Content
	if m.Role == constant.MessageRoleAssistant {
		content = tutor.Render(content)
	}
	return dto.MessageResponse{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Role:           m.Role,
		Content:        content,
		ToolCalls:      m.ToolCalls,
		CreatedAt:      m.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *conversationService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation := entity.Conversation{
		UserId:           userId,
		Title:            req.Title,
		SelectedLevel:    req.SelectedLevel,
		SelectedCourseId: req.SelectedCourseId,
	}

	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	res := toConversationResponse(&conversation)
	return &res, nil
}

// List pages through the user's conversations, most recently updated first.
// page is zero based.
func (s *conversationService) List(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.ConversationListResponse, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = constant.DefaultConversationPageSize
	}
	if limit > constant.MaxConversationPageSize {
		limit = constant.MaxConversationPageSize
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	previews, err := uow.ConversationRepository().FindPreviews(ctx, userId, limit, page*limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	res := &dto.ConversationListResponse{
		Data:    make([]dto.ConversationPreviewResponse, 0, len(previews)),
		HasMore: len(previews) == limit,
	}
	for _, p := range previews {
		res.Data = append(res.Data, dto.ConversationPreviewResponse{
			Id:               p.Id,
			Title:            p.Title,
			SelectedLevel:    optional(p.SelectedLevel),
			SelectedCourseId: optional(p.SelectedCourseId),
			UpdatedAt:        p.UpdatedAt,
			LastMessage:      tutor.Render(p.LastMessage),
		})
	}
	if res.HasMore {
		next := page + 1
		res.NextPage = &next
	}
	return res, nil
}

func findOwnedConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

func (s *conversationService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ConversationWithMessagesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := findOwnedConversation(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}

	res := &dto.ConversationWithMessagesResponse{
		ConversationResponse: toConversationResponse(conversation),
		Messages:             make([]dto.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, toMessageResponse(m))
	}
	return res, nil
}

func (s *conversationService) SaveMessage(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.SaveMessageRequest) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findOwnedConversation(ctx, uow, userId, id); err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	message := entity.Message{
		ConversationId: id,
		Role:           req.Role,
		Content:        req.Content,
		ToolCalls:      req.ToolCalls,
	}
	if err := uow.MessageRepository().Create(ctx, &message); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	if err := uow.ConversationRepository().Touch(ctx, id); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	res := toMessageResponse(&message)
	return &res, nil
}

func (s *conversationService) UpdateTitle(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateConversationTitleRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := findOwnedConversation(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	conversation.Title = req.Title
	return uow.ConversationRepository().Update(ctx, conversation)
}

// UpdateSelection records a selection made in the UI selector. Unlike a
// directive, it may clear the course.
func (s *conversationService) UpdateSelection(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateConversationSelectionRequest) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := findOwnedConversation(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	conversation.SelectedLevel = req.SelectedLevel
	conversation.SelectedCourseId = req.SelectedCourseId
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, fmt.Errorf("update selection: %w", err)
	}

	selection := tutor.Selection{Level: course.Level(req.SelectedLevel), CourseId: req.SelectedCourseId}
	s.selections.Save(id, selection)
	s.publish(ctx, events.New(constant.EventCourseSelectionChanged, selectionPayload(userId, id, selection)))

	res := toConversationResponse(conversation)
	return &res, nil
}

func (s *conversationService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := findOwnedConversation(ctx, uow, userId, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByConversationId(ctx, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := uow.ConversationRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.selections.Delete(id)
	s.publish(ctx, events.New(constant.EventConversationDeleted, map[string]interface{}{
		"user_id":         userId.String(),
		"conversation_id": id.String(),
	}))
	return nil
}

func (s *conversationService) publish(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish event", zap.String("type", event.EventType()), zap.Error(err))
	}
}

func selectionPayload(userId, conversationId uuid.UUID, selection tutor.Selection) map[string]interface{} {
	return map[string]interface{}{
		"user_id":         userId.String(),
		"conversation_id": conversationId.String(),
		"level":           string(selection.Level),
		"course_id":       selection.CourseId,
	}
}
