package redisx

import "time"

const (
	// Idempotency create reservation: idem:reservation:create:{user_id}:{external_id} -> reservation_id
	KeyIdemReservationCreate = "idem:reservation:create:%s:%s"

	// Cache reservation: reservation:{id} -> reservation JSON
	KeyReservation = "reservation:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency      = 24 * time.Hour
	TTLReservationCache = 5 * time.Minute
	TTLDedup            = 48 * time.Hour
)
