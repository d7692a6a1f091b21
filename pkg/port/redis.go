// The Redis port serves the named lists of a ListStore over the Redis protocol, so any Redis client can push to and
// pop from them. Only the list commands and a few connection commands are supported.

package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

var address = flag.String("address", ":6380", "The ip:port to listen on for Redis protocol.")

var ErrWrongArgs = errors.New("wrong number of arguments")

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string
	args    []string
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool     // Closes the connection if true.
	writeNil        bool     // Writes a nil value if true.
	err             *string  // Error to return if set.
	writeInt        *int     // Writes an integer value if set.
	writeArray      []string // Writes an array of bulk strings if non-nil.
	writeBulk       *string  // Writes a bulk string if set.
	writeString     string   // Writes a simple string otherwise.
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisNil() redisOutput {
	return redisOutput{writeNil: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisBulk(s string) redisOutput {
	return redisOutput{writeBulk: &s}
}

func writeRedisArray(values []string) redisOutput {
	if values == nil {
		values = []string{}
	}
	return redisOutput{writeArray: values}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

func wrongArgs(command string) redisOutput {
	return writeRedisError(fmt.Errorf("%w for '%s' command", ErrWrongArgs, strings.ToLower(command)))
}

// writeTo writes the output to a redcon connection.
func (o redisOutput) writeTo(conn redcon.Conn) {
	switch {
	case o.err != nil:
		conn.WriteError(*o.err)
	case o.writeNil:
		conn.WriteNull()
	case o.writeInt != nil:
		conn.WriteInt(*o.writeInt)
	case o.writeArray != nil:
		conn.WriteArray(len(o.writeArray))
		for _, value := range o.writeArray {
			conn.WriteBulkString(value)
		}
	case o.writeBulk != nil:
		conn.WriteBulkString(*o.writeBulk)
	default:
		conn.WriteString(o.writeString)
	}
}

type redisHandler struct {
	store *ListStore
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(store *ListStore) (*redisHandler, error) {
	if store == nil {
		return nil, errors.New("expected a non-nil storage")
	}
	return &redisHandler{store: store}, nil
}

// handlePush serves LPUSH / RPUSH.
func (rh *redisHandler) handlePush(cmd redisCommand, front bool) redisOutput {
	if len(cmd.args) < 2 {
		return wrongArgs(cmd.command)
	}
	push := rh.store.PushBack
	if front {
		push = rh.store.PushFront
	}
	length, err := push(cmd.args[0], cmd.args[1:]...)
	if err != nil {
		return writeRedisError(err)
	}
	return writeRedisInt(length)
}

// handlePop serves LPOP / RPOP with the optional count argument.
func (rh *redisHandler) handlePop(cmd redisCommand, front bool) redisOutput {
	if len(cmd.args) < 1 || len(cmd.args) > 2 {
		return wrongArgs(cmd.command)
	}
	pop := rh.store.PopBack
	if front {
		pop = rh.store.PopFront
	}
	if len(cmd.args) == 1 { // Single element reply.
		popped, _ := pop(cmd.args[0], 1)
		if len(popped) == 0 {
			return writeRedisNil()
		}
		return writeRedisBulk(popped[0])
	}
	count, err := strconv.Atoi(cmd.args[1])
	if err != nil || count < 0 {
		return writeRedisError(errors.New("value is out of range, must be positive"))
	}
	popped, exists := pop(cmd.args[0], count)
	if !exists {
		return writeRedisNil()
	}
	return writeRedisArray(popped)
}

func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	cmd.command = strings.ToUpper(cmd.command)
	switch cmd.command {
	case "PING":
		if len(cmd.args) == 1 {
			return writeRedisBulk(cmd.args[0])
		}
		return writeRedisString("PONG")
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "LPUSH":
		return rh.handlePush(cmd, true /*front*/)
	case "RPUSH":
		return rh.handlePush(cmd, false /*front*/)
	case "LPOP":
		return rh.handlePop(cmd, true /*front*/)
	case "RPOP":
		return rh.handlePop(cmd, false /*front*/)
	case "LLEN":
		if len(cmd.args) != 1 {
			return wrongArgs(cmd.command)
		}
		return writeRedisInt(rh.store.Len(cmd.args[0]))
	case "LRANGE":
		if len(cmd.args) != 3 {
			return wrongArgs(cmd.command)
		}
		start, startErr := strconv.Atoi(cmd.args[1])
		stop, stopErr := strconv.Atoi(cmd.args[2])
		if err := errors.Join(startErr, stopErr); err != nil {
			return writeRedisError(errors.New("value is not an integer or out of range"))
		}
		return writeRedisArray(rh.store.Range(cmd.args[0], start, stop))
	case "EXISTS":
		if len(cmd.args) < 1 {
			return wrongArgs(cmd.command)
		}
		existing := 0
		for _, key := range cmd.args {
			if rh.store.Exists(key) {
				existing++
			}
		}
		return writeRedisInt(existing)
	case "KEYS":
		if len(cmd.args) != 1 {
			return wrongArgs(cmd.command)
		}
		keys, err := rh.store.Keys(cmd.args[0])
		if err != nil {
			return writeRedisError(err)
		}
		return writeRedisArray(keys)
	case "DEL":
		if len(cmd.args) < 1 {
			return wrongArgs(cmd.command)
		}
		deletedCount := 0
		for _, key := range cmd.args {
			if rh.store.Delete(key) {
				deletedCount++
			}
		}
		return writeRedisInt(deletedCount)
	default:
		return writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	}
}

// RunRedisServer starts a Redis protocol server serving the lists of the given store until `ctx` is cancelled.
func RunRedisServer(ctx context.Context, store *ListStore) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	redisHandler, err := newRedisHandler(store)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}

	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			// Convert redcon.Command to redisCommand.
			command := redisCommand{command: string(cmd.Args[0]), args: make([]string, len(cmd.Args)-1)}
			for i := 1; i < len(cmd.Args); i++ {
				command.args[i-1] = string(cmd.Args[i])
			}
			output := redisHandler.handle(command)
			output.writeTo(conn)
			if output.closeConnection {
				if err := conn.Close(); err != nil {
					slog.Error("Failed to close connection.", "error", err)
				}
			}
		},
		/*accept*/ func(conn redcon.Conn) bool {
			slog.Debug("Accepted connection.", "remote", conn.RemoteAddr())
			return true // Accept all connections.
		},
		/*close*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Debug("Connection closed with error.", "remote", conn.RemoteAddr(), "error", err)
			}
		})

	serverErrSignal := make(chan error, 1)
	go func() {
		if err := redisServer.ListenAndServe(); err != nil {
			serverErrSignal <- err
		}
		close(serverErrSignal)
	}()
	slog.Info("Serving lists over the Redis protocol.", "address", *address)

	select {
	case <-ctx.Done():
		serverErr := redisServer.Close()
		storeErr := store.Close()
		if exitErr := errors.Join(serverErr, storeErr); exitErr != nil {
			return fmt.Errorf("failed to close chains: %w", exitErr)
		}
	case err := <-serverErrSignal:
		if err == nil {
			return errors.New("redis server stopped unexpectedly")
		}
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}
