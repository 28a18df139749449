// Package influx records camera poses and path exports as InfluxDB points.
// When the server is unreachable the points go to a gzipped line protocol
// file that can be replayed later with `influx write`.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/config"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
	"github.com/Changa-Husky/VrChatDollyController/internal/pose"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
)

const (
	MeasurementPose   = "camera_pose"
	MeasurementExport = "path_export"

	retention = 30 * 24 * time.Hour
)

type sink interface {
	write(p *write.Point) error
	close() error
}

// Recorder implements the controller's telemetry hooks. Points are
// dropped with a debug log if the sink fails.
type Recorder struct {
	log        zerolog.Logger
	cfg        config.InfluxConfig
	backupPath string
	session    string

	client influxdb2.Client
	sink   sink
}

func New(log zerolog.Logger, cfg config.InfluxConfig, backupPath, session string) *Recorder {
	return &Recorder{
		log:        log.With().Str("component", "influx").Logger(),
		cfg:        cfg,
		backupPath: backupPath,
		session:    session,
	}
}

// Connect picks the sink. An unreachable server is not an error as long
// as the backup file can be opened.
func (r *Recorder) Connect(ctx context.Context) error {
	if !r.cfg.Enabled {
		return errors.New("influx disabled")
	}

	client := influxdb2.NewClientWithOptions(r.cfg.URL(), r.cfg.Token,
		influxdb2.DefaultOptions().SetBatchSize(200).SetFlushInterval(1000))
	if ok, err := client.Ping(ctx); err != nil || !ok {
		client.Close()
		r.log.Warn().Err(err).Str("url", r.cfg.URL()).Str("backup", r.backupPath).
			Msg("InfluxDB unreachable, writing points to backup file")
		fs, err := openFileSink(r.backupPath)
		if err != nil {
			return err
		}
		r.sink = fs
		return nil
	}

	if err := ensureBucket(ctx, client, r.cfg.Org, r.cfg.Bucket); err != nil {
		client.Close()
		return err
	}
	r.client = client
	r.sink = newServerSink(client.WriteAPI(r.cfg.Org, r.cfg.Bucket), r.log)
	r.log.Info().Str("url", r.cfg.URL()).Str("bucket", r.cfg.Bucket).Msg("InfluxDB connected")
	return nil
}

// Local reports whether points go to the backup file.
func (r *Recorder) Local() bool {
	_, ok := r.sink.(*fileSink)
	return ok
}

func ensureBucket(ctx context.Context, c influxdb2.Client, orgName, bucket string) error {
	orgs := c.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, orgName)
	if err != nil {
		if org, err = orgs.CreateOrganizationWithName(ctx, orgName); err != nil {
			return fmt.Errorf("create influx org %s: %w", orgName, err)
		}
	}
	if _, err := c.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
		return nil
	}
	expire := domain.RetentionRuleTypeExpire
	_, err = c.BucketsAPI().CreateBucketWithName(ctx, org, bucket, domain.RetentionRule{
		Type:         &expire,
		EverySeconds: int64(retention / time.Second),
	})
	if err != nil {
		return fmt.Errorf("create influx bucket %s: %w", bucket, err)
	}
	return nil
}

func (r *Recorder) Write(p *write.Point) error {
	if r.sink == nil {
		return errors.New("influx recorder not connected")
	}
	return r.sink.write(p)
}

func (r *Recorder) RecordPose(p pose.Pose) {
	if err := r.Write(PosePoint(p, r.session)); err != nil {
		r.log.Debug().Err(err).Msg("Pose point dropped")
	}
}

func (r *Recorder) RecordExport(rec model.ExportRecord) {
	if err := r.Write(ExportPoint(rec)); err != nil {
		r.log.Debug().Err(err).Msg("Export point dropped")
	}
}

// Close flushes the sink and releases the client.
func (r *Recorder) Close() error {
	var err error
	if r.sink != nil {
		err = r.sink.close()
	}
	if r.client != nil {
		r.client.Close()
	}
	return err
}

type serverSink struct {
	api api.WriteAPI
}

func newServerSink(w api.WriteAPI, log zerolog.Logger) *serverSink {
	go func() {
		for err := range w.Errors() {
			log.Error().Err(err).Msg("InfluxDB write failed")
		}
	}()
	return &serverSink{api: w}
}

func (s *serverSink) write(p *write.Point) error {
	s.api.WritePoint(p)
	return nil
}

func (s *serverSink) close() error {
	s.api.Flush()
	return nil
}

type fileSink struct {
	f  *os.File
	gz *gzip.Writer
}

func openFileSink(path string) (*fileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open influx backup: %w", err)
	}
	return &fileSink{f: f, gz: gzip.NewWriter(f)}, nil
}

func (s *fileSink) write(p *write.Point) error {
	line := write.PointToLineProtocol(p, time.Nanosecond)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := s.gz.Write([]byte(line)); err != nil {
		return fmt.Errorf("write influx backup: %w", err)
	}
	return nil
}

func (s *fileSink) close() error {
	return errors.Join(s.gz.Close(), s.f.Close())
}

// PosePoint builds the point for one camera pose.
func PosePoint(p pose.Pose, session string) *write.Point {
	return write.NewPoint(MeasurementPose,
		map[string]string{"session": session},
		map[string]any{
			"x":     p.Position.X,
			"y":     p.Position.Y,
			"z":     p.Position.Z,
			"pitch": p.Rotation.X,
			"yaw":   p.Rotation.Y,
			"roll":  p.Rotation.Z,
		},
		p.Time,
	)
}

// ExportPoint builds the point for one sent path.
func ExportPoint(rec model.ExportRecord) *write.Point {
	return write.NewPoint(MeasurementExport,
		map[string]string{"session": rec.SessionID, "mode": rec.Mode},
		map[string]any{
			"points":   rec.Points,
			"duration": rec.Duration,
			"length":   rec.Length,
		},
		rec.Time,
	)
}
