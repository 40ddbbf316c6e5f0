package ui

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"surveyml/domain/core"
	"surveyml/domain/survey"
	"surveyml/internal/errors"
	"surveyml/internal/report"
)

// CreateSessionRequest selects the survey source to train on
type CreateSessionRequest struct {
	Source string `json:"source"`
}

// PredictRequest names a training row or carries a new record. Comment is shorthand for
// the comment field.
type PredictRequest struct {
	Row      *int                   `json:"row"`
	ID       string                 `json:"id"`
	Scores   map[string]interface{} `json:"scores"`
	Comments map[string]string      `json:"comments"`
	Comment  string                 `json:"comment"`
}

func (r PredictRequest) record() survey.Record {
	rec := survey.Record{ID: r.ID, Scores: r.Scores, Comments: make(map[string]string, len(r.Comments)+1)}
	for k, v := range r.Comments {
		rec.Comments[k] = v
	}
	if r.Comment != "" {
		rec.Comments[survey.FieldComment] = r.Comment
	}
	return rec
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.SessionCount()})
}

// handleCreateSession loads the requested source and trains a new session
func (s *Server) handleCreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, errors.InvalidInput("invalid request body: "+err.Error()))
			return
		}
	}

	source, err := s.sources(req.Source)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	ds, loadWarnings, err := source.Load(ctx)
	if err != nil {
		s.writeError(c, core.NewStageError(core.StageIngest, err))
		return
	}

	artifacts, err := s.pipeline.Train(ctx, ds)
	if err != nil {
		s.writeError(c, err)
		return
	}

	sess := &Session{
		ID:           core.NewSessionID(),
		CreatedAt:    s.now(),
		Source:       source.Name(),
		Artifacts:    artifacts,
		LoadWarnings: loadWarnings,
	}
	s.putSession(sess)
	s.logger.Info("[Server] session %s trained on %s (run %s)", sess.ID, sess.Source, artifacts.RunID)

	summary, err := s.pipeline.Summary(artifacts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"run_id":     artifacts.RunID,
		"summary":    summary,
	})
}

// lookup resolves the :id parameter, writing a 404 when the session is unknown
func (s *Server) lookup(c *gin.Context) (*Session, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.writeError(c, errors.InvalidInput(err.Error()))
		return nil, false
	}
	sess, ok := s.session(id)
	if !ok {
		s.writeError(c, errors.NotFound("session "+id.String()))
		return nil, false
	}
	return sess, true
}

func (s *Server) handleReport(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	summary, err := s.pipeline.Summary(sess.Artifacts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	importance, err := s.pipeline.Importance(sess.Artifacts, 0)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":    sess,
		"summary":    summary,
		"importance": importance,
		"timings":    sess.Artifacts.Timings,
	})
}

func (s *Server) handleImportance(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	topN := 0
	if raw := c.Query("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(c, errors.InvalidInput("top_n must be a positive integer"))
			return
		}
		topN = n
	}
	importance, err := s.pipeline.Importance(sess.Artifacts, topN)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"importance": importance})
}

func (s *Server) handlePredict(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	rec := req.record()
	if req.Row != nil {
		var err error
		if rec, err = sess.Artifacts.Record(*req.Row); err != nil {
			s.writeError(c, errors.InvalidInput(err.Error()))
			return
		}
	}

	result, err := s.pipeline.Predict(c.Request.Context(), sess.Artifacts, rec)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record_id": rec.ID, "prediction": result})
}

func (s *Server) handleSummary(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	summary, err := s.pipeline.Summary(sess.Artifacts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	importance, err := s.pipeline.Importance(sess.Artifacts, 0)
	if err != nil {
		s.writeError(c, err)
		return
	}
	insights, err := s.pipeline.Insights(sess.Artifacts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	page := report.Page("Survey run "+string(summary.RunID), report.Markdown(summary, importance, insights))
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleInsights(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	insights, err := s.pipeline.Insights(sess.Artifacts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
