package app

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/signova/internal/capture"
	"github.com/ayusman/signova/internal/detector"
	"github.com/ayusman/signova/internal/geometry"
	"github.com/ayusman/signova/internal/gesture"
	"github.com/ayusman/signova/internal/overlay"
	"github.com/ayusman/signova/internal/store"
)

// Motion gate pacing.
const (
	// IdleFPS is the frame rate while the gate sees no motion.
	IdleFPS = 5
	// IdleTimeout is how long without motion before dropping to IdleFPS.
	IdleTimeout = 2 * time.Second
	// highlightWindow is how long a fresh commit stays highlighted.
	highlightWindow = 500 * time.Millisecond
)

// handResult is the per-hand output of one frame.
type handResult struct {
	Points      []geometry.Point
	Rect        geometry.Rect
	Handedness  string
	Label       string
	Index       int
	Confidence  float64
	MotionIndex int
	MotionLabel string
}

// frameResult is everything recognition produced for one frame.
type frameResult struct {
	Hands   []handResult
	Commits []gesture.Commit
}

// run is the capture loop. It owns frame acquisition and recognition; a
// device that reports closed ends the session.
//
// With the motion gate enabled the loop starts idle at IdleFPS, switches to
// the full frame rate on motion and drops back after IdleTimeout of stillness.
// Idle frames skip detection and count as frames without a hand.
func (s *Session) run() {
	defer close(s.done)

	active := s.gate == nil
	interval := s.cfg.FrameInterval
	if !active {
		interval = time.Second / IdleFPS
	}
	lastMotion := s.now()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrDeviceClosed) || errors.Is(err, capture.ErrCameraNotOpen) {
				s.log.WithError(err).Warn("camera closed, stopping session")
				go s.Stop()
				return
			}
			s.log.WithError(err).Debug("skipping frame")
			continue
		}

		gocv.Flip(*frame, frame, 1)

		if s.gate != nil {
			moved, _ := s.gate.Detect(frame)
			switch {
			case moved:
				lastMotion = s.now()
				if !active {
					active = true
					ticker.Reset(s.cfg.FrameInterval)
					s.log.Debug("switched to active mode")
				}
			case active && s.now().Sub(lastMotion) > IdleTimeout:
				active = false
				ticker.Reset(time.Second / IdleFPS)
				s.log.Debug("switched to idle mode")
			}
		}

		s.processFrame(frame, active)
		frame.Close()
	}
}

// processFrame runs one recognition cycle on a mirrored frame and publishes
// the diagnostic JPEG.
func (s *Session) processFrame(frame *gocv.Mat, detect bool) {
	debug := frame.Clone()
	defer debug.Close()

	width, height := frame.Cols(), frame.Rows()
	now := s.now()

	var hands []detector.HandLandmarks
	if detect {
		var err error
		hands, err = s.detector.Detect(frame)
		if err != nil {
			s.log.WithError(err).Debug("hand detection failed")
			hands = nil
		}
	}

	result := s.processHands(hands, width, height, now)
	fps := s.fps.Sample()

	s.mu.Lock()
	s.lastFPS = fps
	s.frameCount++
	s.mu.Unlock()

	if s.cfg.Overlay {
		overlay.Draw(&debug, s.overlayFrame(result, fps, now))
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, debug)
	if err != nil {
		s.log.WithError(err).Debug("frame encode failed")
		return
	}
	s.setFrame(buf.GetBytes())
	buf.Close()
}

// processHands classifies up to MaxHands hands, updates the point history
// and feeds non-sentinel labels to the stability filter.
func (s *Session) processHands(hands []detector.HandLandmarks, width, height int, now time.Time) frameResult {
	var result frameResult

	if len(hands) > s.cfg.MaxHands {
		hands = hands[:s.cfg.MaxHands]
	}
	if len(hands) == 0 {
		s.history.Push(geometry.Origin)
		s.setMotion("")
		return result
	}

	sampling := s.sampleLogging()

	for _, hand := range hands {
		points := geometry.LandmarkPoints(hand, width, height)
		pose := geometry.NormalizePose(points)
		trajectory := geometry.NormalizeTrajectory(width, height, s.history.Points())

		cls := s.pose.Classify(pose)
		label := s.pose.Label(cls.Index)

		if cls.Confidence > s.cfg.PointerThreshold && s.isPointer(label) {
			s.history.Push(points[detector.IndexTip])
		} else {
			s.history.Push(geometry.Origin)
		}

		motionIndex := s.motion.Classify(trajectory)
		motionLabel := s.motion.Label(motionIndex)
		s.setMotion(motionLabel)

		if sampling != nil {
			s.logSample(sampling, pose, trajectory)
		}

		hr := handResult{
			Points:      points,
			Rect:        geometry.BoundingRect(points),
			Handedness:  hand.Handedness,
			Label:       label,
			Index:       cls.Index,
			Confidence:  cls.Confidence,
			MotionIndex: motionIndex,
			MotionLabel: motionLabel,
		}
		result.Hands = append(result.Hands, hr)

		if s.isSentinel(label) {
			continue
		}
		if c, ok := s.filter.TryCommit(label, cls.Confidence, now); ok {
			s.commit(c)
			result.Commits = append(result.Commits, c)
		}
	}

	return result
}

func (s *Session) commit(c gesture.Commit) {
	for _, w := range c.Words {
		display := s.assembler.AppendWord(w)
		s.log.WithFields(logrus.Fields{
			"label":      c.Label,
			"word":       display,
			"confidence": c.Confidence,
		}).Info("recognized")
	}

	s.mu.Lock()
	s.recent = append(s.recent, c.Label)
	if len(s.recent) > s.cfg.RecentWords {
		s.recent = s.recent[len(s.recent)-s.cfg.RecentWords:]
	}
	s.lastCommit = c.At
	s.commitCount++
	cb := s.onCommit
	s.mu.Unlock()

	if cb != nil {
		cb(c)
	}
}

func (s *Session) logSample(l *SampleLogging, pose, trajectory []float64) {
	if s.store == nil {
		return
	}
	vector := pose
	if l.Kind == store.KindMotion {
		vector = trajectory
	}
	if _, err := s.store.Samples().Append(l.Kind, l.ClassID, vector); err != nil {
		s.log.WithError(err).Warn("failed to log sample")
	}
}

func (s *Session) setMotion(label string) {
	s.mu.Lock()
	s.lastMotion = label
	s.mu.Unlock()
}

func (s *Session) overlayFrame(r frameResult, fps float64, now time.Time) overlay.Frame {
	f := overlay.Frame{
		History:     s.history.Points(),
		FPS:         fps,
		Sentence:    s.assembler.Text(),
		Translation: s.assembler.TranslatedText(),
		Speaking:    s.speech.IsSpeaking(),
	}
	for _, h := range r.Hands {
		f.Hands = append(f.Hands, overlay.Hand{
			Points:     h.Points,
			Rect:       h.Rect,
			Handedness: h.Handedness,
			Label:      h.Label,
		})
		if h.MotionLabel != "" {
			f.Motion = h.MotionLabel
		}
	}

	s.mu.RLock()
	f.Highlight = !s.lastCommit.IsZero() && now.Sub(s.lastCommit) < highlightWindow
	f.Speaking = f.Speaking || (!s.lastCommit.IsZero() && now.Sub(s.lastCommit) < highlightWindow)
	if s.sampling != nil {
		f.Mode = modeName(s.sampling.Kind)
		f.ClassID = s.sampling.ClassID
	}
	s.mu.RUnlock()

	return f
}

func modeName(k store.Kind) string {
	if k == store.KindMotion {
		return "Logging Point History"
	}
	return "Logging Key Point"
}
