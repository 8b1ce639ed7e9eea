package service

import (
	"context"
	"fmt"
	"time"

	"ai-docchat-be/internal/constant"
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/entity"
	"ai-docchat-be/internal/repository/memory"
	"ai-docchat-be/internal/repository/specification"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/rag/access"
	"ai-docchat-be/pkg/rag/prompt"
	"ai-docchat-be/pkg/retrieval"
	"ai-docchat-be/pkg/store"

	"github.com/google/uuid"
)

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
}

const maxChatSources = 5

type chatbotService struct {
	uowFactory     unitofwork.RepositoryFactory
	searchService  ISearchService
	llmProvider    llm.LLMProvider
	sessionRepo    *memory.SessionRepository
	accessVerifier *access.Verifier
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	searchService ISearchService,
	llmProvider llm.LLMProvider,
	sessionRepo *memory.SessionRepository,
	accessVerifier *access.Verifier,
) IChatbotService {
	return &chatbotService{
		uowFactory:     uowFactory,
		searchService:  searchService,
		llmProvider:    llmProvider,
		sessionRepo:    sessionRepo,
		accessVerifier: accessVerifier,
	}
}

func (cs *chatbotService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "Unnamed session",
		CreatedAt: now,
	}

	chatMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          constant.ChatInitialGreeting,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &chatMessage); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

func (cs *chatbotService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

func (cs *chatbotService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, len(chatMessages))
	for i, msg := range chatMessages {
		messageIds[i] = msg.Id
	}

	citations, err := uow.ChatCitationRepository().FindAllByMessageIds(ctx, messageIds)
	if err != nil {
		return nil, err
	}

	citationsByMsgId := make(map[uuid.UUID][]dto.CitationDTO)
	for _, c := range citations {
		filename := ""
		if c.Document != nil {
			filename = c.Document.Filename
		}
		citationsByMsgId[c.ChatMessageId] = append(citationsByMsgId[c.ChatMessageId], dto.CitationDTO{
			ChunkId:    c.ChunkId,
			DocumentId: c.DocumentId,
			Filename:   filename,
			Rank:       c.Rank,
		})
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
			Citations: citationsByMsgId[msg.Id],
		})
	}

	return resp, nil
}

func (cs *chatbotService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if cs.accessVerifier != nil {
		if err := cs.accessVerifier.VerifyChatLimit(ctx, userId); err != nil {
			return nil, err
		}
	}

	chatSession, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: request.ChatSessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if chatSession == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}

	existingMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	// Only the greeting present means this is the first user message
	updateSessionTitle := len(existingMessages) == 1
	now := time.Now()

	// Retrieve grounding chunks before opening the write transaction
	results, err := cs.searchService.Retrieve(ctx, userId, request.Chat, maxChatSources)
	if err != nil {
		return nil, err
	}

	reply, err := cs.generateReply(ctx, request.Chat, existingMessages, results)
	if err != nil {
		return nil, err
	}

	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: request.ChatSessionId,
		Role:          constant.ChatMessageRoleUser,
		Chat:          request.Chat,
		CreatedAt:     now,
	}
	modelMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: request.ChatSessionId,
		Role:          constant.ChatMessageRoleModel,
		Chat:          reply,
		CreatedAt:     now.Add(1 * time.Second),
	}

	citations := make([]*entity.ChatCitation, len(results))
	citationDTOs := make([]dto.CitationDTO, len(results))
	for i, r := range results {
		citations[i] = &entity.ChatCitation{
			Id:            uuid.New(),
			ChatMessageId: modelMessage.Id,
			ChunkId:       r.Chunk.Id,
			DocumentId:    r.Chunk.DocumentId,
			Rank:          i + 1,
			CreatedAt:     now,
		}
		citationDTOs[i] = dto.CitationDTO{
			ChunkId:    r.Chunk.Id,
			DocumentId: r.Chunk.DocumentId,
			Filename:   r.Chunk.Filename,
			Rank:       i + 1,
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &modelMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatCitationRepository().CreateBulk(ctx, citations); err != nil {
		return nil, err
	}

	if updateSessionTitle {
		chatSession.Title = sessionTitleFrom(request.Chat)
		updatedAt := now
		chatSession.UpdatedAt = &updatedAt
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if cs.accessVerifier != nil {
		// Usage accounting is best effort
		_ = cs.accessVerifier.IncrementChatUsage(ctx, userId)
	}

	cs.cacheSession(chatSession, userId, request.Chat, results)

	return &dto.SendChatResponse{
		ChatSessionId:    chatSession.Id,
		ChatSessionTitle: chatSession.Title,
		Sent: &dto.SendChatResponseChat{
			Id:        userMessage.Id,
			Chat:      userMessage.Chat,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        modelMessage.Id,
			Chat:      modelMessage.Chat,
			Role:      modelMessage.Role,
			CreatedAt: modelMessage.CreatedAt,
			Citations: citationDTOs,
		},
	}, nil
}

func (cs *chatbotService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: request.ChatSessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session not found or access denied")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}

	cs.sessionRepo.Delete(request.ChatSessionId.String())

	return uow.Commit()
}

// generateReply builds the grounded prompt and asks the model for an answer.
func (cs *chatbotService) generateReply(
	ctx context.Context,
	chat string,
	history []*entity.ChatMessage,
	results []retrieval.SearchResult,
) (string, error) {
	chunks := make([]store.RetrievedChunk, len(results))
	for i, r := range results {
		chunks[i] = store.RetrievedChunk{
			ID:       r.Chunk.Id.String(),
			Filename: r.Chunk.Filename,
			Content:  r.Chunk.Content,
			Score:    r.Scores.Final,
		}
	}

	builder := prompt.NewGroundedBuilder(chat, chunks)

	llmHistory := make([]llm.Message, 0, len(history)+1)
	for _, msg := range history {
		role := msg.Role
		if role == constant.ChatMessageRoleModel {
			role = "assistant"
		}
		llmHistory = append(llmHistory, llm.Message{
			Role:    role,
			Content: msg.Chat,
		})
	}
	llmHistory = append(llmHistory, llm.Message{
		Role:    "user",
		Content: builder.Build(),
	})

	return cs.llmProvider.Chat(ctx, llmHistory)
}

func (cs *chatbotService) cacheSession(sess *entity.ChatSession, userId uuid.UUID, query string, results []retrieval.SearchResult) {
	if cs.sessionRepo == nil {
		return
	}
	cached := &store.Session{
		ID:        sess.Id.String(),
		UserID:    userId.String(),
		LastQuery: query,
	}
	for _, r := range results {
		cached.LastChunks = append(cached.LastChunks, store.RetrievedChunk{
			ID:       r.Chunk.Id.String(),
			Filename: r.Chunk.Filename,
			Content:  r.Chunk.Content,
			Score:    r.Scores.Final,
		})
	}
	cs.sessionRepo.Save(cached)
}

func sessionTitleFrom(chat string) string {
	const maxTitleLen = 60
	runes := []rune(chat)
	if len(runes) <= maxTitleLen {
		return chat
	}
	return string(runes[:maxTitleLen]) + "..."
}
