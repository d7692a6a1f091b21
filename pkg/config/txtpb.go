// Chains uses flags and a single config file for configuration.
// A config file is stored in .txtpb format and contains the values that can be set via flags.

package config

import (
	"flag"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// skippedProtobufFlags is the list of command line flags on which the protobuf check is disabled.
var skippedProtobufFlags = []string{"print_version", "config_file"}

// configFileDescriptor describes the txtpb config schema:
//
//	logging { handler_type: "json" level: "debug" }
//	server { address: ":6380" }
//	lists { shard_count: 8 max_length: 100000 }
func configFileDescriptor() *descriptorpb.FileDescriptorProto {
	field := func(name string, number int32, kind descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
		fd := &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			JsonName: proto.String(name),
			Number:   proto.Int32(number),
			Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:     kind.Enum(),
		}
		if typeName != "" {
			fd.TypeName = proto.String(typeName)
		}
		return fd
	}
	message := func(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
		return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
	}
	const (
		stringKind  = descriptorpb.FieldDescriptorProto_TYPE_STRING
		int32Kind   = descriptorpb.FieldDescriptorProto_TYPE_INT32
		int64Kind   = descriptorpb.FieldDescriptorProto_TYPE_INT64
		messageKind = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	)
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("chains/config.proto"),
		Package: proto.String("chains"),
		Syntax:  proto.String("proto2"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("Config",
				field("logging", 1, messageKind, ".chains.Logging"),
				field("server", 2, messageKind, ".chains.Server"),
				field("lists", 3, messageKind, ".chains.Lists")),
			message("Logging",
				field("handler_type", 1, stringKind, ""),
				field("level", 2, stringKind, "")),
			message("Server",
				field("address", 1, stringKind, "")),
			message("Lists",
				field("shard_count", 1, int32Kind, ""),
				field("max_length", 2, int64Kind, "")),
		},
	}
}

// flagNames maps every config leaf to the command line flag it sets.
var flagNames = map[protoreflect.FullName] /*flagName*/ string{
	"chains.Logging.handler_type": "log_handler_type",
	"chains.Logging.level":        "log_level",
	"chains.Server.address":       "address",
	"chains.Lists.shard_count":    "list_shard_count",
	"chains.Lists.max_length":     "max_list_length",
}

// configDescriptor returns the descriptor of the root Config message.
func configDescriptor() (protoreflect.MessageDescriptor, error) {
	file, err := protodesc.NewFile(configFileDescriptor(), new(protoregistry.Files))
	if err != nil {
		return nil, fmt.Errorf("failed to build config descriptor: %w", err)
	}
	md := file.Messages().ByName("Config")
	if md == nil {
		return nil, fmt.Errorf("config descriptor has no Config message: %s", file.Path())
	}
	return md, nil
}

// flagNameOf returns the flag bound to the given field, if any.
func flagNameOf(fd protoreflect.FieldDescriptor) (string, bool) {
	flagName, ok := flagNames[fd.FullName()]
	return flagName, ok && flagName != ""
}

// protobufValueToString converts a protobuf field value to its string representation suitable for flag setting.
// Only the kinds used by the config schema are supported.
func protobufValueToString(fd protoreflect.FieldDescriptor, v protoreflect.Value) (string, error) {
	switch fd.Kind() {
	case protoreflect.Int32Kind, protoreflect.Int64Kind:
		return strconv.FormatInt(v.Int(), 10), nil
	case protoreflect.StringKind:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported kind: %v", fd.Kind())
	}
}

// collectAndRegisterFlags collects all registered flags with their values from the given protobuf message.
// The collected flags are put inside the given `flags` variable.
func collectAndRegisterFlags(flags map[ /*flagName*/ string] /*flagValue*/ string, m protoreflect.Message) error {
	var err error
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		// Lists/maps are not supported.
		if fd.IsList() || fd.IsMap() {
			err = fmt.Errorf("repeated/map not supported: %s", fd.FullName())
			return false
		}
		flagName, hasFlagName := flagNameOf(fd)
		// Recurse into nested messages that are not bound to a flag themselves.
		if fd.Kind() == protoreflect.MessageKind && !hasFlagName {
			err = collectAndRegisterFlags(flags, v.Message())
			return err == nil
		}
		if !hasFlagName {
			err = fmt.Errorf("config field %s is not bound to any flag", fd.FullName())
			return false
		}
		stringValue, convErr := protobufValueToString(fd, v)
		if convErr != nil {
			err = fmt.Errorf("failed to convert %s: %w", fd.FullName(), convErr)
			return false
		}
		// Check for duplicate flag entries.
		if _, alreadyExists := flags[flagName]; alreadyExists {
			err = fmt.Errorf("flag '%s' has multiple entries in txtpb config: '%s'", flagName, fd.FullName())
			return false
		}
		flags[flagName] = stringValue
		return true
	})
	return err
}

// setConfigFlags sets all the filled flags in the given `conf` to the global flag variables.
func setConfigFlags(conf protoreflect.Message) error {
	registeredFlags := make(map[ /*flagName*/ string] /*flagValue*/ string)
	if err := collectAndRegisterFlags(registeredFlags, conf); err != nil {
		return fmt.Errorf("failed to collect flags: %w", err)
	}
	for flagName, flagValue := range registeredFlags {
		if setErr := flag.Set(flagName, flagValue); setErr != nil {
			return fmt.Errorf("failed to set flag %s: %w", flagName, setErr)
		}
	}
	return nil
}

// getDefinedFlags returns the set of defined flags inside the given protobuf message schema.
func getDefinedFlags(md protoreflect.MessageDescriptor) (map[ /*flagName*/ string]struct{}, error) {
	flagSet := make(map[ /*flagName*/ string]struct{})
	var walkFields func(md protoreflect.MessageDescriptor) error
	walkFields = func(md protoreflect.MessageDescriptor) error {
		for fieldIdx := 0; fieldIdx < md.Fields().Len(); fieldIdx++ {
			fd := md.Fields().Get(fieldIdx)
			if fd.IsList() || fd.IsMap() {
				continue // Skip repeated/map fields.
			}
			if flagName, ok := flagNameOf(fd); ok {
				if _, exists := flagSet[flagName]; exists {
					return fmt.Errorf("duplicate flag name '%s' in config: %s", flagName, fd.FullName())
				}
				flagSet[flagName] = struct{}{}
			}
			if fd.Kind() == protoreflect.MessageKind {
				if err := walkFields(fd.Message()); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walkFields(md); err != nil {
		return nil, err
	}
	return flagSet, nil
}

// CollectUnregisteredFlags collects all flags that haven't been registered in the protobuf config.
// An error exists in the results corresponding to each unregistered flag.
func CollectUnregisteredFlags() []error {
	md, err := configDescriptor()
	if err != nil {
		return []error{err}
	}
	definedFlags, err := getDefinedFlags(md)
	if err != nil {
		return []error{err}
	}
	errs := make([]error, 0)
	flag.VisitAll(func(f *flag.Flag) {
		if strings.HasPrefix(f.Name, "test.") { // Skip test flags.
			return
		}
		if slices.Contains(skippedProtobufFlags, f.Name) {
			return
		}
		if _, flagHasConfigEntry := definedFlags[f.Name]; !flagHasConfigEntry {
			errs = append(errs, fmt.Errorf("flag '%s' has not been defined in protobuf config", f.Name))
		}
	})
	return errs
}
