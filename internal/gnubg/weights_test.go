package gnubg

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWeights(t *testing.T, cHidden int) *_NNWeights {
	t.Helper()
	var pw _NNWeights
	for c := _NNClass(0); c < _N_CLASSES; c++ {
		pw.nets[c] = *makeNet(t, anClassInputs[c], cHidden+int(c), _NUM_OUTPUTS)
	}
	return &pw
}

func Test_weightsLoad(t *testing.T) {
	pw := makeWeights(t, 3)

	var text, bin bytes.Buffer
	require.NoError(t, weightsSave(pw, &text))
	require.NoError(t, weightsSaveBinary(pw, &bin))

	assert.True(t, strings.HasPrefix(text.String(), "GNU Backgammon 1.00\n"))

	tests := []struct {
		name string
		data []byte
	}{
		{"text", text.Bytes()},
		{"binary", bin.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got _NNWeights
			require.NoError(t, weightsLoad(&got, bytes.NewReader(tt.data), tt.name))
			for c := _NNClass(0); c < _N_CLASSES; c++ {
				assert.Equal(t, pw.nets[c], got.nets[c], "%v net", c)
			}
		})
	}
}

func Test_weightsLoad_errors(t *testing.T) {
	pw := makeWeights(t, 2)

	var text, bin bytes.Buffer
	require.NoError(t, weightsSave(pw, &text))
	require.NoError(t, weightsSaveBinary(pw, &bin))

	badVersion := new(bytes.Buffer)
	binary.Write(badVersion, binary.LittleEndian, [2]float32{_WEIGHTS_MAGIC_BINARY, 2.0})

	/* race net placed where the contact net belongs */
	swapped := *pw
	swapped.nets[_CLASS_CONTACT], swapped.nets[_CLASS_RACE] = pw.nets[_CLASS_RACE], pw.nets[_CLASS_CONTACT]
	var wrongDims bytes.Buffer
	require.NoError(t, weightsSaveBinary(&swapped, &wrongDims))

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedData},
		{"wrong text version", []byte("GNU Backgammon 0.99\n"), ErrFormat},
		{"not a weights file", []byte("hello world, not weights"), ErrFormat},
		{"wrong binary version", badVersion.Bytes(), ErrFormat},
		{"truncated text", text.Bytes()[:text.Len()/2], ErrTruncatedData},
		{"truncated binary", bin.Bytes()[:bin.Len()-3], ErrTruncatedData},
		{"wrong net dimensions", wrongDims.Bytes(), ErrFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got _NNWeights
			err := weightsLoad(&got, bytes.NewReader(tt.data), tt.name)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, got.nets[_CLASS_CONTACT].loaded(), "weights replaced on failure")
		})
	}
}

func Test_parseNNClass(t *testing.T) {
	tests := []struct {
		s       string
		want    _NNClass
		wantErr bool
	}{
		{"contact", _CLASS_CONTACT, false},
		{"Race", _CLASS_RACE, false},
		{"pruning-crashed", _CLASS_PRUNING_CRASHED, false},
		{"bearoff", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			got, err := parseNNClass(tt.s)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(tt.s), got.String())
		})
	}
}
