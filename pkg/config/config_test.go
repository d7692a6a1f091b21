package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/nobletooth/chains/pkg/port" // Registers the server and list flags.
	"github.com/nobletooth/chains/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txtpb")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func flagValue(t *testing.T, name string) string {
	t.Helper()
	f := flag.Lookup(name)
	require.NotNil(t, f, "Flag %s not found", name)
	return f.Value.String()
}

func TestLoadConfigFile(t *testing.T) {
	utils.PreserveTestFlags(t, "log_level", "log_handler_type", "address", "list_shard_count", "max_list_length")
	path := writeConfig(t, `
logging { handler_type: "text" level: "debug" }
server { address: "127.0.0.1:7000" }
lists { shard_count: 3 max_length: 42 }
`)

	require.NoError(t, loadConfigFile(path))
	assert.Equal(t, "text", flagValue(t, "log_handler_type"))
	assert.Equal(t, "debug", flagValue(t, "log_level"))
	assert.Equal(t, "127.0.0.1:7000", flagValue(t, "address"))
	assert.Equal(t, "3", flagValue(t, "list_shard_count"))
	assert.Equal(t, "42", flagValue(t, "max_list_length"))
}

func TestLoadConfigFile_PartialKeepsOtherFlags(t *testing.T) {
	utils.PreserveTestFlags(t, "address", "max_list_length")
	utils.SetTestFlag(t, "address", ":9999")

	require.NoError(t, loadConfigFile(writeConfig(t, `lists { max_length: 7 }`)))
	assert.Equal(t, ":9999", flagValue(t, "address"))
	assert.Equal(t, "7", flagValue(t, "max_list_length"))
}

func TestLoadConfigFile_Errors(t *testing.T) {
	err := loadConfigFile(filepath.Join(t.TempDir(), "missing.txtpb"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = loadConfigFile(writeConfig(t, `unknown_section { }`))
	assert.ErrorContains(t, err, "failed to parse config file")

	err = loadConfigFile(writeConfig(t, `lists { shard_count: "many" }`))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestProtobufValueToString(t *testing.T) {
	md, err := configDescriptor()
	require.NoError(t, err)
	lists := md.Fields().ByName("lists").Message()
	logging := md.Fields().ByName("logging").Message()

	value, err := protobufValueToString(lists.Fields().ByName("shard_count"), protoreflect.ValueOfInt32(-4))
	require.NoError(t, err)
	assert.Equal(t, "-4", value)
	value, err = protobufValueToString(lists.Fields().ByName("max_length"), protoreflect.ValueOfInt64(1<<40))
	require.NoError(t, err)
	assert.Equal(t, "1099511627776", value)
	value, err = protobufValueToString(logging.Fields().ByName("level"), protoreflect.ValueOfString("warn"))
	require.NoError(t, err)
	assert.Equal(t, "warn", value)

	_, err = protobufValueToString(md.Fields().ByName("logging"), protoreflect.Value{})
	assert.ErrorContains(t, err, "unsupported kind")
}

func TestGetDefinedFlags(t *testing.T) {
	md, err := configDescriptor()
	require.NoError(t, err)
	defined, err := getDefinedFlags(md)
	require.NoError(t, err)
	assert.Len(t, defined, len(flagNames))
	for _, flagName := range flagNames {
		assert.Contains(t, defined, flagName)
	}
}

func TestCollectUnregisteredFlags(t *testing.T) {
	if flag.Lookup("config_test_only_flag") == nil {
		flag.String("config_test_only_flag", "", "Registered only to be reported as missing from the config.")
	}
	errs := CollectUnregisteredFlags()
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "config_test_only_flag")
}
