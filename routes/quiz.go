package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pptx-quiz-service/services"
	"pptx-quiz-service/utils"
)

// QuizPipeline runs one quiz-generation job to completion.
type QuizPipeline interface {
	Run(ctx context.Context, req services.QuizRequest) (*services.PipelineResult, error)
}

// SetupQuizRoutes registers the pipeline endpoint. The caller is trusted
// infrastructure, so no bearer auth here.
func SetupQuizRoutes(router *gin.Engine, pipeline QuizPipeline) {
	router.POST("/process-pptx", func(c *gin.Context) {
		var req services.QuizRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		// Rejected outright, no job status written
		if req.JobID == "" || req.StoragePath == "" || req.UserID == "" {
			utils.RespondWithBadRequest(c, "Missing required fields", nil)
			return
		}

		result, err := pipeline.Run(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrNoSlideText) {
				utils.RespondWithBadRequest(c, "No text found in presentation", nil)
				return
			}
			utils.RespondWithInternalError(c, "Quiz generation failed", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"quizId":        result.QuizID,
			"questionCount": result.QuestionCount,
		})
	})
}
