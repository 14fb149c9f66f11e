package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefixes for cached slot lists
	RedisSlotsKeyPrefix           = "slots:doctor:"
	RedisSlotsIndexKeyPrefix      = "slots:index:"
	RedisSlotsVersionKeyPrefix    = "slots:version:"
	RedisSlotsGenerationKeyPrefix = "slots:generation:"

	// Timeout for individual Redis operations
	redisSlotTimeout = 2 * time.Second

	defaultSlotCacheTTL = 5 * time.Minute
)

// ErrStaleSlots is returned by Set when the cache was invalidated after the slots were generated
var ErrStaleSlots = errors.New("slot list was invalidated while it was generated")

// storeSlotsScript writes a slot list only if neither the doctor generation nor the
// day version moved since the caller took its SlotCacheVersion.
var storeSlotsScript = redis.NewScript(`
	local generation = tonumber(redis.call('GET', KEYS[3]) or '0')
	local day = tonumber(redis.call('GET', KEYS[4]) or '0')
	if generation ~= tonumber(ARGV[2]) or day ~= tonumber(ARGV[3]) then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[4])
	redis.call('SADD', KEYS[2], KEYS[1])
	redis.call('PEXPIRE', KEYS[2], ARGV[4])
	return 1
`)

// invalidateDayScript bumps the day version and deletes every cached slot list of a
// doctor/day together with its index. The index set holds the concrete keys, one per
// requested duration.
var invalidateDayScript = redis.NewScript(`
	redis.call('INCR', KEYS[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[1])
	local keys = redis.call('SMEMBERS', KEYS[1])
	local deleted = 0
	for _, key in ipairs(keys) do
		deleted = deleted + redis.call('DEL', key)
	end
	redis.call('DEL', KEYS[1])
	return deleted
`)

// SlotCacheVersion identifies the invalidation state a slot list was generated against
type SlotCacheVersion struct {
	generation int64
	day        int64
	valid      bool
}

// SlotCacheService is a read-through cache of generated slot lists.
// A nil service, or one without a client, behaves as an always-empty cache.
type SlotCacheService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

func NewSlotCacheService(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *SlotCacheService {
	if ttl <= 0 {
		ttl = defaultSlotCacheTTL
	}
	return &SlotCacheService{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

func (s *SlotCacheService) enabled() bool {
	return s != nil && s.redisClient != nil
}

// versionTTL outlives any slot list so a version never resets under a pending fill
func (s *SlotCacheService) versionTTL() time.Duration {
	return 2 * s.ttl
}

// Get returns the cached slots and whether the cache had an entry
func (s *SlotCacheService) Get(ctx context.Context, doctorID uint, date time.Time, consultationMinutes int) ([]time.Time, bool) {
	if !s.enabled() {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, redisSlotTimeout)
	defer cancel()

	raw, err := s.redisClient.Get(ctx, slotsKey(doctorID, date, consultationMinutes)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warnf("Failed to read slot cache for doctor %d: %+v", doctorID, err)
		}
		return nil, false
	}

	var slots []time.Time
	if err := json.Unmarshal(raw, &slots); err != nil {
		s.log.Warnf("Failed to decode slot cache for doctor %d: %+v", doctorID, err)
		return nil, false
	}
	return slots, true
}

// Version snapshots the invalidation state of a doctor/day.
// Take it before reading the database and hand it to Set with the generated slots.
func (s *SlotCacheService) Version(ctx context.Context, doctorID uint, date time.Time) SlotCacheVersion {
	if !s.enabled() {
		return SlotCacheVersion{}
	}

	ctx, cancel := context.WithTimeout(ctx, redisSlotTimeout)
	defer cancel()

	values, err := s.redisClient.MGet(ctx, slotsGenerationKey(doctorID), slotsVersionKey(doctorID, date)).Result()
	if err != nil {
		s.log.Warnf("Failed to read slot cache version for doctor %d: %+v", doctorID, err)
		return SlotCacheVersion{}
	}

	generation, err := parseCounter(values[0])
	if err != nil {
		s.log.Warnf("Invalid slot cache generation for doctor %d: %+v", doctorID, err)
		return SlotCacheVersion{}
	}
	day, err := parseCounter(values[1])
	if err != nil {
		s.log.Warnf("Invalid slot cache version for doctor %d: %+v", doctorID, err)
		return SlotCacheVersion{}
	}
	return SlotCacheVersion{generation: generation, day: day, valid: true}
}

// Set stores slots and records the key in the doctor/day index. Nothing is stored when
// version was not taken successfully, and ErrStaleSlots is returned when an invalidation
// happened after version was taken.
func (s *SlotCacheService) Set(ctx context.Context, doctorID uint, date time.Time, consultationMinutes int, slots []time.Time, version SlotCacheVersion) error {
	if !s.enabled() || !version.valid {
		return nil
	}

	payload, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode slots for doctor %d: %w", doctorID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, redisSlotTimeout)
	defer cancel()

	keys := []string{
		slotsKey(doctorID, date, consultationMinutes),
		slotsIndexKey(doctorID, date),
		slotsGenerationKey(doctorID),
		slotsVersionKey(doctorID, date),
	}
	stored, err := storeSlotsScript.Run(ctx, s.redisClient, keys, payload, version.generation, version.day, s.ttl.Milliseconds()).Int()
	if err != nil {
		s.log.Warnf("Failed to cache slots for doctor %d: %+v", doctorID, err)
		return fmt.Errorf("cache slots for doctor %d: %w", doctorID, err)
	}
	if stored == 0 {
		return ErrStaleSlots
	}
	return nil
}

// InvalidateDay drops every cached slot list of doctorID on the UTC day of date
func (s *SlotCacheService) InvalidateDay(ctx context.Context, doctorID uint, date time.Time) error {
	if !s.enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisSlotTimeout)
	defer cancel()

	keys := []string{slotsIndexKey(doctorID, date), slotsVersionKey(doctorID, date)}
	deleted, err := invalidateDayScript.Run(ctx, s.redisClient, keys, s.versionTTL().Milliseconds()).Int()
	if err != nil {
		s.log.Warnf("Failed to invalidate slot cache for doctor %d: %+v", doctorID, err)
		return fmt.Errorf("invalidate slot cache for doctor %d: %w", doctorID, err)
	}

	s.log.Debugf("Invalidated %d cached slot lists for doctor %d on %s", deleted, doctorID, date.UTC().Format(time.DateOnly))
	return nil
}

// InvalidateDoctor drops every cached slot list of doctorID, used when availability changes
func (s *SlotCacheService) InvalidateDoctor(ctx context.Context, doctorID uint) error {
	if !s.enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisSlotTimeout)
	defer cancel()

	// fills that started before this point are refused from now on
	generationKey := slotsGenerationKey(doctorID)
	pipe := s.redisClient.TxPipeline()
	pipe.Incr(ctx, generationKey)
	pipe.PExpire(ctx, generationKey, s.versionTTL())
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnf("Failed to bump slot cache generation for doctor %d: %+v", doctorID, err)
		return fmt.Errorf("bump slot cache generation for doctor %d: %w", doctorID, err)
	}

	patterns := []string{
		fmt.Sprintf("%s%d:*", RedisSlotsKeyPrefix, doctorID),
		fmt.Sprintf("%s%d:*", RedisSlotsIndexKeyPrefix, doctorID),
	}

	var keys []string
	for _, pattern := range patterns {
		iter := s.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			s.log.Warnf("Failed to scan slot cache for doctor %d: %+v", doctorID, err)
			return fmt.Errorf("scan slot cache for doctor %d: %w", doctorID, err)
		}
	}

	if len(keys) == 0 {
		return nil
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnf("Failed to invalidate slot cache for doctor %d: %+v", doctorID, err)
		return fmt.Errorf("invalidate slot cache for doctor %d: %w", doctorID, err)
	}

	s.log.Debugf("Invalidated %d slot cache keys for doctor %d", len(keys), doctorID)
	return nil
}

func slotsKey(doctorID uint, date time.Time, consultationMinutes int) string {
	return fmt.Sprintf("%s%d:%s:%d", RedisSlotsKeyPrefix, doctorID, date.UTC().Format(time.DateOnly), consultationMinutes)
}

func slotsIndexKey(doctorID uint, date time.Time) string {
	return fmt.Sprintf("%s%d:%s", RedisSlotsIndexKeyPrefix, doctorID, date.UTC().Format(time.DateOnly))
}

func slotsVersionKey(doctorID uint, date time.Time) string {
	return fmt.Sprintf("%s%d:%s", RedisSlotsVersionKeyPrefix, doctorID, date.UTC().Format(time.DateOnly))
}

func slotsGenerationKey(doctorID uint) string {
	return fmt.Sprintf("%s%d", RedisSlotsGenerationKeyPrefix, doctorID)
}

// parseCounter reads an MGET reply of an INCR counter, a missing key counts as 0
func parseCounter(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected counter value %T", value)
	}
}
