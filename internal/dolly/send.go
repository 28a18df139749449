package dolly

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/footprint"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/path"
	"github.com/Changa-Husky/VrChatDollyController/internal/transform"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func (c *Controller) input(s *state) path.Input {
	return path.Input{
		Settings:         s.settings,
		Origin:           s.origin,
		Center:           s.center,
		Target:           s.target,
		Camera:           c.deps.Poses.Snapshot().Position,
		Loaded:           s.loaded,
		IsLocal:          s.isLocal,
		ArcClockwise:     s.arcClockwise,
		ArcFaceTangent:   s.arcTangent,
		ReverseDollyZoom: s.reverseZoom,
		DollyZoomBase:    s.zoomBase,
	}
}

// regenerate rebuilds the stored path from scratch and sends it.
func (c *Controller) regenerate(ctx context.Context) {
	p, err := path.Generate(c.st.mode, c.input(c.st))
	switch {
	case errors.Is(err, path.ErrNoTarget):
		c.statusf("Dolly zoom needs a view target.")
	case errors.Is(err, path.ErrNoLoadedPath):
		c.statusf("No custom path loaded.")
	case err != nil:
		c.log.Error("Path generation failed", "mode", c.st.mode.String(), "error", err)
	}
	c.st.xf.ApplyOffsets(&p, c.st.target != nil)
	c.st.path = p

	c.metrics.regenerations.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", p.Mode.String())))
	c.send(ctx)
}

// send finalizes a copy of the stored path, writes the waypoint file and
// tells the renderer to import it. The first send of a session is skipped
// when initial import suppression is on.
func (c *Controller) send(ctx context.Context) {
	s := c.st
	if s.skipNextSend {
		s.skipNextSend = false
		c.log.Info("Initial import suppressed")
		return
	}

	wps := s.xf.Finalize(s.path, transform.Send{
		Settings:  s.settings,
		Target:    s.target,
		UseTarget: s.useTarget,
	})
	s.sent = wps

	file, err := c.deps.Export.Write(wps)
	if err != nil {
		c.log.Error("Failed to write waypoint file", "error", err)
		c.statusf("Error writing temp file: %v", err)
		return
	}
	c.statusf("Sending dolly path (%d points)", len(wps))
	if err := c.deps.Importer.Import(file); err != nil {
		c.log.Error("Failed to send import", "file", file, "error", err)
		c.statusf("Error sending import: %v", err)
		return
	}
	c.metrics.exports.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", s.path.Mode.String())))

	c.record(s.path.Mode, file, wps)
}

// record hands the export to the optional history, telemetry and stream
// sinks. Failures are logged only.
func (c *Controller) record(mode model.Mode, file string, wps []model.Waypoint) {
	if c.deps.Stream != nil {
		if err := c.deps.Stream.PublishPath(mode, wps); err != nil {
			c.log.Debug("Path not streamed", "error", err)
		}
	}
	if c.deps.Store == nil && c.deps.Telemetry == nil {
		return
	}

	rec := model.ExportRecord{
		Time:      time.Now().UTC(),
		SessionID: c.opts.SessionID,
		Mode:      mode.String(),
		Points:    len(wps),
		Duration:  totalDuration(wps),
		Length:    footprint.Of(wps).Length,
		FilePath:  file,
	}
	if c.deps.Telemetry != nil {
		c.deps.Telemetry.RecordExport(rec)
	}
	if c.deps.Store != nil {
		data, err := json.Marshal(wps)
		if err != nil {
			c.log.Warn("Failed to encode export history", "error", err)
			return
		}
		rec.Waypoints = data
		if err := c.deps.Store.RecordExport(&rec); err != nil {
			c.log.Warn("Failed to record export", "error", err)
		}
	}
}

func totalDuration(wps []model.Waypoint) float64 {
	var d float64
	for _, w := range wps {
		d += w.Duration
	}
	return model.Round(d, 3)
}
