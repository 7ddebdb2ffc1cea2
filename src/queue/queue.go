package queue

import (
	"encoding/json"

	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	"github.com/garyburd/redigo/redis"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	requestsKey     = "stylizeme"
	resultKeyPrefix = "stylize"

	// results are only polled shortly after the request, there is no point in
	// keeping them longer than an hour.
	resultExpiration = 3600
)

var ErrEmpty = errors.New("queue is empty")

// Queue hands stylize requests from the API to the workers and the results
// back, both through redis.
type Queue struct {
	pool *redis.Pool
}

func New(pool *redis.Pool) *Queue {
	return &Queue{pool: pool}
}

func NewPool(address string, maxConnections int) *redis.Pool {
	return redis.NewPool(func() (redis.Conn, error) {
		c, err := redis.Dial("tcp", address)

		if err != nil {
			return nil, err
		}

		return c, err
	}, maxConnections)
}

func (q *Queue) Push(request datastructures.StylizeRequest) error {
	serialized, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "couldn't marshal request")
	}

	redisConn := q.pool.Get()
	defer redisConn.Close()

	_, err = redisConn.Do("RPUSH", requestsKey, serialized)
	if err != nil {
		return errors.Wrap(err, "couldn't queue request")
	}
	return nil
}

// Pop takes the oldest request off the queue. It returns ErrEmpty when there
// is nothing to do.
func (q *Queue) Pop() (datastructures.StylizeRequest, error) {
	var request datastructures.StylizeRequest

	redisConn := q.pool.Get()
	defer redisConn.Close()

	data, err := redis.Bytes(redisConn.Do("LPOP", requestsKey))
	if err == redis.ErrNil {
		return request, ErrEmpty
	}
	if err != nil {
		return request, errors.Wrap(err, "couldn't pop request")
	}

	err = json.Unmarshal(data, &request)
	if err != nil {
		log.Debug("[Queue] Couldn't unmarshal: ", err.Error())
		return request, errors.Wrap(err, "couldn't unmarshal request")
	}
	return request, nil
}

func (q *Queue) StoreResult(result datastructures.StylizeResult) error {
	serialized, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "couldn't marshal result")
	}

	redisConn := q.pool.Get()
	defer redisConn.Close()

	_, err = redisConn.Do("SETEX", resultKeyPrefix+result.Uuid, resultExpiration, serialized)
	if err != nil {
		return errors.Wrap(err, "couldn't store result")
	}
	return nil
}

// Result looks up the result for uuid. found is false as long as the request
// hasn't been processed (or the uuid is unknown).
func (q *Queue) Result(uuid string) (result datastructures.StylizeResult, found bool, err error) {
	redisConn := q.pool.Get()
	defer redisConn.Close()

	data, err := redis.Bytes(redisConn.Do("GET", resultKeyPrefix+uuid))
	if err == redis.ErrNil {
		return result, false, nil
	}
	if err != nil {
		return result, false, errors.Wrap(err, "couldn't get result")
	}

	err = json.Unmarshal(data, &result)
	if err != nil {
		return result, false, errors.Wrap(err, "couldn't unmarshal result")
	}
	return result, true, nil
}
