package scenario

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kvsdriver/kvs/internal/kvs/defaults"
	"github.com/kvsdriver/kvs/internal/kvs/engine"
	"github.com/kvsdriver/kvs/internal/kvs/registry"
	"github.com/kvsdriver/kvs/internal/kvs/value"
	"github.com/kvsdriver/kvs/internal/scenario/render"
	"github.com/kvsdriver/kvs/internal/telemetry/logger"
)

// Run drives the engine through the named scenario, emitting one Info log
// record per step via log. reg is used so "multiple_kvs" scenarios can
// exercise instance sharing across handles. Every log line is tagged with
// a fresh run id so separate invocations against the same directory can be
// told apart in aggregated log output.
func Run(log logger.Logger, reg *registry.Registry, name string, cfg Config) error {
	log = log.With("run_id", uuid.NewString(), "scenario", name)

	switch {
	case name == "basic.basic":
		return runBasic(log, reg, cfg)
	case name == "cit.default_values.default_values":
		return runDefaultValues(log, reg, cfg)
	case name == "cit.default_values.remove_key":
		return runRemoveKey(log, reg, cfg)
	case name == "cit.multiple_kvs.multiple_instance_ids":
		return runMultipleInstanceIDs(log, reg, cfg)
	case name == "cit.multiple_kvs.same_instance_id_same_value" ||
		name == "cit.multiple_kvs.same_instance_id_diff_value":
		return runSameInstanceID(log, reg, cfg)
	case name == "cit.persistency.explicit_flush":
		return runExplicitFlush(log, reg, cfg)
	case name == "cit.snapshots.count" || name == "cit.snapshots.max_count":
		return runSnapshotCount(log, reg, cfg)
	case name == "cit.snapshots.restore":
		return runSnapshotRestore(log, reg, cfg)
	case name == "cit.snapshots.paths":
		return runSnapshotPaths(log, reg, cfg)
	case name == "cit.supported_datatypes.keys":
		return runSupportedDatatypesKeys(log, reg, cfg)
	case strings.HasPrefix(name, "cit.supported_datatypes.values."):
		tag := strings.TrimPrefix(name, "cit.supported_datatypes.values.")
		return runSupportedDatatypesValue(log, reg, cfg, tag)
	default:
		return fmt.Errorf("scenario: unknown scenario %q", name)
	}
}

func openHandle(reg *registry.Registry, cfg Config) (*registry.Handle, error) {
	return reg.Open(engine.Params{
		InstanceID:     cfg.KvsParameters.InstanceID,
		Dir:            cfg.KvsParameters.Dir,
		DefaultsPolicy: cfg.KvsParameters.Policy(),
		FlushOnExit:    cfg.KvsParameters.FlushOnExit,
	})
}

func runBasic(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	h.Kvs().Set("example_key", value.Str("example_value"))
	v, err := h.Kvs().Get("example_key")
	if err != nil {
		return err
	}
	wire, err := value.Encode(v)
	if err != nil {
		return err
	}
	log.Info("get", "key", "example_key", "value", string(wire))
	return nil
}

func logQueryTriplet(log logger.Logger, k *engine.Kvs, key string) {
	isDefault, isDefaultErr := k.IsDefault(key)
	def, defErr := k.GetDefault(key)
	cur, curErr := k.Get(key)

	log.Info("query",
		"key", key,
		"value_is_default", render.FromError(isDefaultErr, render.OkBool(isDefault)),
		"default_value", render.FromError(defErr, render.OkValue(def)),
		"current_value", render.FromError(curErr, render.OkValue(cur)),
	)
}

func runDefaultValues(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	logQueryTriplet(log, h.Kvs(), "test_number")
	h.Kvs().Set("test_number", value.F64(432.1))
	logQueryTriplet(log, h.Kvs(), "test_number")
	return nil
}

func runRemoveKey(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	logQueryTriplet(log, h.Kvs(), "test_number")
	h.Kvs().Set("test_number", value.F64(432.1))
	logQueryTriplet(log, h.Kvs(), "test_number")
	if err := h.Kvs().ResetKey("test_number"); err != nil {
		return err
	}
	logQueryTriplet(log, h.Kvs(), "test_number")
	return nil
}

func runMultipleInstanceIDs(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h1, err := reg.Open(engine.Params{InstanceID: 1, Dir: cfg.KvsParameters.Dir, DefaultsPolicy: defaults.Optional})
	if err != nil {
		return err
	}
	defer reg.Release(h1)
	h2, err := reg.Open(engine.Params{InstanceID: 2, Dir: cfg.KvsParameters.Dir, DefaultsPolicy: defaults.Optional})
	if err != nil {
		return err
	}
	defer reg.Release(h2)

	h1.Kvs().Set("number", value.F64(111.1))
	h2.Kvs().Set("number", value.F64(222.2))

	v1, _ := h1.Kvs().Get("number")
	v2, _ := h2.Kvs().Get("number")
	log.Info("instance value", "instance", "kvs1", "number", render.OkValue(v1))
	log.Info("instance value", "instance", "kvs2", "number", render.OkValue(v2))
	return nil
}

func runSameInstanceID(log logger.Logger, reg *registry.Registry, cfg Config) error {
	a, err := reg.Open(engine.Params{InstanceID: cfg.KvsParameters.InstanceID, Dir: cfg.KvsParameters.Dir, DefaultsPolicy: defaults.Optional})
	if err != nil {
		return err
	}
	defer reg.Release(a)
	b, err := reg.Open(engine.Params{InstanceID: cfg.KvsParameters.InstanceID, Dir: cfg.KvsParameters.Dir, DefaultsPolicy: defaults.Optional})
	if err != nil {
		return err
	}
	defer reg.Release(b)

	a.Kvs().Set("number", value.F64(111.1))

	va, _ := a.Kvs().Get("number")
	vb, _ := b.Kvs().Get("number")
	log.Info("instance value", "instance", "a", "number", render.OkValue(va))
	log.Info("instance value", "instance", "b", "number", render.OkValue(vb))
	return nil
}

func runExplicitFlush(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("test_number_%d", i)
		h.Kvs().Set(key, value.F64(12.3*float64(i)))
	}
	if err := h.Kvs().Flush(); err != nil {
		return err
	}
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("test_number_%d", i)
		v, err := h.Kvs().Get(key)
		log.Info("flushed value", "key", key, "current_value", render.FromError(err, render.OkValue(v)))
	}
	return nil
}

func runSnapshotCount(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	log.Info("max count", "max_count", int(h.Kvs().SnapshotMaxCount()))

	count := cfg.Count
	if count == 0 {
		count = 1
	}
	log.Info("snapshot count", "snapshot_count", int(h.Kvs().SnapshotCount()))
	for i := 0; i < count; i++ {
		h.Kvs().Set("n", value.I32(int32(i)))
		if err := h.Kvs().Flush(); err != nil {
			return err
		}
		log.Info("snapshot count", "snapshot_count", int(h.Kvs().SnapshotCount()))
	}
	return nil
}

func runSnapshotRestore(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	count := cfg.Count
	for i := 0; i < count; i++ {
		h.Kvs().Set("value", value.I32(int32(i)))
		if err := h.Kvs().Flush(); err != nil {
			return err
		}
	}

	restoreErr := h.Kvs().Restore(cfg.SnapshotID)
	log.Info("restore result", "result", render.FromError(restoreErr, render.OkUnit()))
	if restoreErr != nil {
		return restoreErr
	}

	v, err := h.Kvs().Get("value")
	if err != nil {
		return err
	}
	n, _ := v.AsI32()
	log.Info("restored value", "value", int(n))
	return nil
}

func runSnapshotPaths(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	count := cfg.Count
	for i := 0; i < count; i++ {
		h.Kvs().Set("n", value.I32(int32(i)))
		if err := h.Kvs().Flush(); err != nil {
			return err
		}
	}

	payloadPath, hashPath, pathsErr := h.Kvs().SnapshotPaths(cfg.SnapshotID)
	kvsPathRendered := render.FromError(pathsErr, render.OkQuoted(filepath.ToSlash(payloadPath)))
	hashPathRendered := render.FromError(pathsErr, render.OkQuoted(filepath.ToSlash(hashPath)))
	log.Info("snapshot paths", "kvs_path", kvsPathRendered, "hash_path", hashPathRendered)
	return nil
}

func runSupportedDatatypesKeys(log logger.Logger, reg *registry.Registry, cfg Config) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	entries := map[string]value.Value{
		"example":    value.Str("value"),
		"emoji ✅❗😀":  value.Str("value"),
		"greek ημα":  value.Str("value"),
	}
	for k, v := range entries {
		h.Kvs().Set(k, v)
	}
	for k := range entries {
		got, err := h.Kvs().Get(k)
		if err != nil {
			return err
		}
		wire, err := value.Encode(got)
		if err != nil {
			return err
		}
		log.Info("key", "key", k, "value", string(wire))
	}
	return nil
}

func runSupportedDatatypesValue(log logger.Logger, reg *registry.Registry, cfg Config, tag string) error {
	h, err := openHandle(reg, cfg)
	if err != nil {
		return err
	}
	defer reg.Release(h)

	v, ok := datatypeSample(tag)
	if !ok {
		return fmt.Errorf("scenario: unsupported datatype tag %q", tag)
	}

	h.Kvs().Set(tag, v)
	got, err := h.Kvs().Get(tag)
	if err != nil {
		return err
	}
	wire, err := value.Encode(got)
	if err != nil {
		return err
	}
	log.Info("value", "key", tag, "value", string(wire))
	return nil
}

func datatypeSample(tag string) (value.Value, bool) {
	switch tag {
	case "i32":
		return value.I32(-321), true
	case "u32":
		return value.U32(1234), true
	case "i64":
		return value.I64(-123456789), true
	case "u64":
		return value.U64(123456789), true
	case "f64":
		return value.F64(-5432.1), true
	case "bool":
		return value.Bool(true), true
	case "str":
		return value.Str("example"), true
	case "arr":
		return value.Array([]value.Value{
			value.F64(321.5),
			value.Bool(false),
			value.Str("hello"),
			value.Null(),
			value.Array(nil),
			value.Object(map[string]value.Value{"sub-number": value.F64(789)}),
		}), true
	case "obj":
		return value.Object(map[string]value.Value{"sub-number": value.F64(789)}), true
	default:
		return value.Value{}, false
	}
}
