package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/alkime/stretch/internal/pose"
	"github.com/alkime/stretch/internal/session"
	"github.com/gin-gonic/gin"
)

// landmarkRequest carries either a full MediaPipe frame or named keypoints.
type landmarkRequest struct {
	Landmarks []pose.Landmark `json:"landmarks"`
	Keypoints pose.Keypoints  `json:"keypoints"`
}

func (r landmarkRequest) sample() pose.Sample {
	if len(r.Landmarks) > 0 {
		return pose.Sample{Keypoints: pose.FromLandmarks(r.Landmarks)}
	}

	return pose.Sample{Keypoints: pose.Filter(r.Keypoints)}
}

func (s *Server) handleLandmarks(c *gin.Context) {
	var req landmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid landmark payload: " + err.Error()})
		return
	}

	sample := req.sample()
	if sample.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload has no required keypoints"})
		return
	}

	if err := s.session.PushSample(sample); err != nil {
		if errors.Is(err, session.ErrClosed) {
			c.JSON(http.StatusConflict, gin.H{"error": "session closed"})
			return
		}

		s.logger.Error("failed to push sample", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept sample"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": len(sample.Keypoints)})
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Snapshot())
}

// handleEvents streams snapshots as Server-Sent Events until the session
// closes or the client goes away.
func (s *Server) handleEvents(c *gin.Context) {
	snaps, unsubscribe := s.session.Subscribe(8)
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return !snap.Closed
		case <-c.Request.Context().Done():
			return false
		}
	})
}
