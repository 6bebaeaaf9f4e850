package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edstack/exam-service/internal/models"
	"github.com/edstack/exam-service/internal/repositories"
	"github.com/edstack/exam-service/internal/utils"
	"github.com/edstack/exam-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    utils.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger utils.Logger, v *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID uint) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateQuestionContent(req.Type, req.Options, req.CorrectAnswer); err != nil {
		return nil, err
	}

	exists, err := s.repo.Question().ExistsByContent(ctx, nil, req.Text, req.Type, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicates: %w", err)
	}
	if exists {
		return nil, NewValidationError("an identical question already exists")
	}

	question := questionFromRequest(req, creatorID)
	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("question created", "question_id", question.ID, "type", question.Type, "created_by", creatorID)
	return question, nil
}

func (s *questionService) CreateBatch(ctx context.Context, reqs []CreateQuestionRequest, creatorID uint) (*ImportResult, error) {
	result := &ImportResult{}
	questions := make([]*models.Question, 0, len(reqs))

	for i, req := range reqs {
		req := req
		if err := s.validator.Validate(&req); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		if err := validateQuestionContent(req.Type, req.Options, req.CorrectAnswer); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i+1, err))
			continue
		}
		exists, err := s.repo.Question().ExistsByContent(ctx, nil, req.Text, req.Type, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicates: %w", err)
		}
		if exists {
			result.Skipped++
			continue
		}
		questions = append(questions, questionFromRequest(&req, creatorID))
	}

	if len(questions) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, nil, questions); err != nil {
			return nil, fmt.Errorf("failed to create questions: %w", err)
		}
	}
	result.Created = len(questions)

	s.logger.Info("question batch created", "created", result.Created, "skipped", result.Skipped, "by", creatorID)
	return result, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint, userID uint, role models.UserRole) (*models.Question, error) {
	if role == models.RoleStudent {
		return nil, NewPermissionError(userID, id, "question", "read", "question bank is staff only")
	}
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID uint) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Explanation != nil {
		question.Explanation = req.Explanation
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.Topic != nil {
		question.Topic = req.Topic
	}
	if req.QPCode != nil {
		question.QPCode = req.QPCode
	}

	if err := validateQuestionContent(question.Type, question.Options, question.CorrectAnswer); err != nil {
		return nil, err
	}
	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uint, userID uint) error {
	used, err := s.repo.Question().IsUsedInTests(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to check question usage: %w", err)
	}
	if used {
		return NewValidationError("question is linked to one or more tests")
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return &QuestionListResponse{
		Questions: questions,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

// xlsx import columns, by position:
// type | text | option A | option B | option C | option D | correct answer |
// explanation | marks | difficulty | topic | qp code
const importMinColumns = 7

// ImportXLSX bulk-loads questions from a spreadsheet. The first row is a
// header and is skipped. Bad rows are reported, not fatal.
func (s *questionService) ImportXLSX(ctx context.Context, r io.Reader, creatorID uint) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewValidationError("could not read spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, NewValidationError("could not read sheet %q: %v", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, NewValidationError("spreadsheet has no data rows")
	}

	reqs := make([]CreateQuestionRequest, 0, len(rows)-1)
	result := &ImportResult{}
	for i, row := range rows[1:] {
		req, err := parseQuestionRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		reqs = append(reqs, *req)
	}

	batchResult, err := s.CreateBatch(ctx, reqs, creatorID)
	if err != nil {
		return nil, err
	}
	batchResult.Skipped += result.Skipped
	batchResult.Errors = append(result.Errors, batchResult.Errors...)
	return batchResult, nil
}

func parseQuestionRow(row []string) (*CreateQuestionRequest, error) {
	if len(row) < importMinColumns {
		return nil, fmt.Errorf("expected at least %d columns, got %d", importMinColumns, len(row))
	}
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	qType := models.QuestionType(strings.ToUpper(cell(0)))
	text := cell(1)
	if text == "" {
		return nil, fmt.Errorf("question text is empty")
	}

	req := &CreateQuestionRequest{
		Type:          qType,
		Text:          text,
		CorrectAnswer: cell(6),
		Marks:         1,
		Difficulty:    models.DifficultyMedium,
	}

	options := models.MCQOptions{}
	for i, key := range []string{"A", "B", "C", "D"} {
		if v := cell(2 + i); v != "" {
			options[key] = v
		}
	}
	if len(options) > 0 {
		raw, err := json.Marshal(options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		req.Options = datatypes.JSON(raw)
	}

	if v := cell(7); v != "" {
		req.Explanation = &v
	}
	if v := cell(8); v != "" {
		marks, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid marks %q", v)
		}
		req.Marks = marks
	}
	if v := cell(9); v != "" {
		req.Difficulty = models.DifficultyLevel(strings.ToUpper(v))
	}
	if v := cell(10); v != "" {
		req.Topic = &v
	}
	if v := cell(11); v != "" {
		req.QPCode = &v
	}

	return req, nil
}

func questionFromRequest(req *CreateQuestionRequest, creatorID uint) *models.Question {
	question := &models.Question{
		Type:          req.Type,
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Marks:         req.Marks,
		Difficulty:    req.Difficulty,
		Topic:         req.Topic,
		QPCode:        req.QPCode,
		CreatedBy:     creatorID,
	}
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyMedium
	}
	if question.Marks == 0 {
		question.Marks = 1
	}
	return question
}

// validateQuestionContent enforces per-type option requirements.
func validateQuestionContent(qType models.QuestionType, options datatypes.JSON, correctAnswer string) error {
	switch qType {
	case models.QuestionMCQ, models.QuestionChoiceBased:
		var opts models.MCQOptions
		if len(options) == 0 {
			return NewValidationError("%s questions require options", qType)
		}
		if err := json.Unmarshal(options, &opts); err != nil {
			return NewValidationError("options must be a key-value object: %v", err)
		}
		if len(opts) < 2 {
			return NewValidationError("%s questions require at least two options", qType)
		}
	case models.QuestionTrueFalse:
		v := strings.ToLower(strings.TrimSpace(correctAnswer))
		if v != "true" && v != "false" {
			return NewValidationError("TRUE_FALSE answer must be true or false")
		}
	case models.QuestionMatch:
		var opts models.MatchOptions
		if len(options) == 0 {
			return NewValidationError("MATCH questions require left and right lists")
		}
		if err := json.Unmarshal(options, &opts); err != nil {
			return NewValidationError("options must hold left and right lists: %v", err)
		}
		if len(opts.Left) == 0 || len(opts.Left) != len(opts.Right) {
			return NewValidationError("MATCH questions need equally sized left and right lists")
		}
	}
	return nil
}
