package taskqueue

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore guarda el schedule en un ZSET (score = run_at en ms) y los
// payloads en un HASH. Un job se reclama con ZREM: solo el worker que lo
// quita del ZSET lo ejecuta, así varias réplicas pueden drenar a la vez.
type RedisStore struct {
	client      *redislib.Client
	scheduleKey string
	payloadKey  string
	logger      *zap.Logger
}

func NewRedisStore(client *redislib.Client, prefix string, logger *zap.Logger) *RedisStore {
	if prefix == "" {
		prefix = "petlink:jobs"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client:      client,
		scheduleKey: prefix + ":schedule",
		payloadKey:  prefix + ":payload",
		logger:      logger,
	}
}

func (s *RedisStore) Add(ctx context.Context, job Job) error {
	if err := job.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.HSet(ctx, s.payloadKey, job.ID, payload)
		pipe.ZAdd(ctx, s.scheduleKey, redislib.Z{
			Score:  float64(job.RunAt.UnixMilli()),
			Member: job.ID,
		})
		return nil
	})
	return err
}

func (s *RedisStore) PopDue(ctx context.Context, now time.Time, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 100
	}

	ids, err := s.client.ZRangeByScore(ctx, s.scheduleKey, &redislib.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	// Un error a mitad de camino devuelve lo ya reclamado junto con el error:
	// esos jobs ya no están en Redis y el caller tiene que ejecutarlos.
	out := make([]Job, 0, len(ids))
	for _, id := range ids {
		removed, err := s.client.ZRem(ctx, s.scheduleKey, id).Result()
		if err != nil {
			return out, err
		}
		if removed == 0 {
			// otra réplica lo reclamó primero
			continue
		}

		raw, err := s.client.HGet(ctx, s.payloadKey, id).Bytes()
		if err == redislib.Nil {
			continue
		}
		if err != nil {
			// devolvemos el id al schedule para el próximo drain
			s.reschedule(ctx, id, now)
			return out, err
		}
		_ = s.client.HDel(ctx, s.payloadKey, id).Err()

		var job Job
		if err := json.Unmarshal(raw, &job); err != nil {
			// entrada corrupta: se descarta para no bloquear la cola
			s.logger.Error("discarding unreadable job", zap.String("job_id", id), zap.Error(err))
			continue
		}
		out = append(out, job)
	}
	return out, nil
}

func (s *RedisStore) reschedule(ctx context.Context, id string, at time.Time) {
	err := s.client.ZAdd(ctx, s.scheduleKey, redislib.Z{
		Score:  float64(at.UnixMilli()),
		Member: id,
	}).Err()
	if err != nil {
		s.logger.Error("failed to reschedule claimed job", zap.String("job_id", id), zap.Error(err))
	}
}

func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.scheduleKey).Result()
	return int(n), err
}
