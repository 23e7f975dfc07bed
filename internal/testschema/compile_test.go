package testschema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvusproto/dynwire/dynamic"
	"github.com/corvusproto/dynwire/internal/testschema"
)

const sampleProto = `
syntax = "proto2";

enum Color {
  RED = 0;
  GREEN = 1;
  BLUE = 2;
}

message Inner {
  optional uint32 id = 1;
}

message Outer {
  required int32 count = 1;
  repeated int32 tags = 2 [packed = true];
  optional Color color = 3;
  optional Inner inner = 4;
}
`

func TestCompileAndDecode(t *testing.T) {
	table, err := testschema.Compile("sample.proto", sampleProto)
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	data := []byte{
		0x08, 0x05, // count = 5
		0x12, 0x02, 0x01, 0x02, // packed tags = [1, 2]
		0x18, 0x01, // color = GREEN
		0x22, 0x02, 0x08, 0x07, // inner.id = 7
	}
	m, err := dynamic.Decode(data, "Outer", table)
	require.NoError(t, err)

	require.Equal(t, int64(5), m.Get(1).Int64())
	require.Equal(t, []int64{1, 2}, seqInts(m.Get(2).Seq()))
	require.Equal(t, "GREEN", m.Get(3).Str())
	require.Equal(t, uint64(7), m.Get(4).Message().Get(1).Uint64())
}

func seqInts(vs []dynamic.Value) []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = v.Int64()
	}
	return out
}
