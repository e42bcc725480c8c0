// Package redis stores conversations in Redis.
//
// Each session is a list under "<prefix>session:<id>" holding one JSON turn
// per element, appended with RPUSH and read back with LRANGE:
//
//	s := redis.New(redis.Options{
//		Addr: "localhost:6379",
//		TTL:  24 * time.Hour,
//	})
//	defer s.Close()
package redis
