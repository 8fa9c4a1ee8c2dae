package gnubg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

type _NNClass int

const (
	_CLASS_CONTACT _NNClass = iota
	_CLASS_RACE
	_CLASS_CRASHED
	_CLASS_PRUNING_CONTACT
	_CLASS_PRUNING_CRASHED
	_CLASS_PRUNING_RACE
	_N_CLASSES
)

var nnClassNames = [_N_CLASSES]string{
	"contact",
	"race",
	"crashed",
	"pruning-contact",
	"pruning-crashed",
	"pruning-race",
}

func (c _NNClass) String() string {
	if c < 0 || c >= _N_CLASSES {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return nnClassNames[c]
}

const _MINPPERPOINT = 4
const _MORE_INPUTS = 25
const _HALF_RACE_INPUTS = 107

const _NUM_INPUTS = ((25*_MINPPERPOINT + _MORE_INPUTS) * 2)
const _NUM_RACE_INPUTS = (_HALF_RACE_INPUTS * 2)
const _NUM_PRUNING_INPUTS = (25 * _MINPPERPOINT * 2)

/* input count each net of a weights file must have */
var anClassInputs = [_N_CLASSES]int{
	_NUM_INPUTS,
	_NUM_RACE_INPUTS,
	_NUM_INPUTS,
	_NUM_PRUNING_INPUTS,
	_NUM_PRUNING_INPUTS,
	_NUM_PRUNING_INPUTS,
}

const _WEIGHTS_VERSION = "1.00"
const _WEIGHTS_MAGIC_BINARY float32 = 472.3782
const _WEIGHTS_VERSION_BINARY float32 = 1.00

/* the nets of a weights file, in file order */
type _NNWeights struct {
	nets [_N_CLASSES]_NeuralNet
}

func (pw *_NNWeights) net(c _NNClass) *_NeuralNet {
	if c < 0 || c >= _N_CLASSES {
		return nil
	}
	return &pw.nets[c]
}

func verifyWeights(pf io.Reader, szFilename string) error {
	var file_version string
	if n, err := fmt.Fscanf(pf, "GNU Backgammon %15s\n", &file_version); n != 1 || err != nil {
		return fmt.Errorf("%w: %v is not a weights file: %v/%v", ErrFormat, szFilename, n, err)
	}
	if file_version != _WEIGHTS_VERSION {
		return fmt.Errorf("%w: weights file %v, has incorrect version (%v), expected (%v)", ErrFormat, szFilename, file_version, _WEIGHTS_VERSION)
	}
	return nil
}

func verifyWeightsBinary(pf io.Reader, szFilename string) error {
	var ar [2]float32
	if err := binary.Read(pf, binary.LittleEndian, &ar); err != nil {
		return fmt.Errorf("%w: %v: weights header: %v", readError(err), szFilename, err)
	}
	if ar[0] != _WEIGHTS_MAGIC_BINARY {
		return fmt.Errorf("%w: %v is not a binary weights file", ErrFormat, szFilename)
	}
	if ar[1] != _WEIGHTS_VERSION_BINARY {
		return fmt.Errorf("%w: weights file %v, has incorrect version (%v), expected (%v)", ErrFormat, szFilename, ar[1], _WEIGHTS_VERSION_BINARY)
	}
	return nil
}

// isTextWeights peeks at the stream without consuming it.
func isTextWeights(r *bufio.Reader) bool {
	b, _ := r.Peek(4)
	return string(b) == "GNU "
}

// weightsLoad reads a text or binary weights file. pw is only replaced when
// every net has been read and checked.
func weightsLoad(pw *_NNWeights, pf io.Reader, szFilename string) error {
	var nnw _NNWeights

	r := bufio.NewReader(pf)
	fText := isTextWeights(r)

	if fText {
		if err := verifyWeights(r, szFilename); err != nil {
			return err
		}
	} else if err := verifyWeightsBinary(r, szFilename); err != nil {
		return err
	}

	for c := _NNClass(0); c < _N_CLASSES; c++ {
		var err error
		if fText {
			err = neuralNetLoad(&nnw.nets[c], r)
		} else {
			err = neuralNetLoadBinary(&nnw.nets[c], r)
		}
		if err != nil {
			return fmt.Errorf("%v: loading %v net: %w", szFilename, c, err)
		}

		pnn := &nnw.nets[c]
		if pnn.cInput != anClassInputs[c] || pnn.cOutput != _NUM_OUTPUTS {
			return fmt.Errorf("%w: %v: %v net is %dx%dx%d, expected %d inputs and %d outputs",
				ErrFormat, szFilename, c, pnn.cInput, pnn.cHidden, pnn.cOutput, anClassInputs[c], _NUM_OUTPUTS)
		}
	}

	*pw = nnw
	logDebugf("loaded weights from %v (text=%v)", szFilename, fText)
	return nil
}

func weightsSave(pw *_NNWeights, pf io.Writer) error {
	if _, err := io.WriteString(pf, "GNU Backgammon "+_WEIGHTS_VERSION+"\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	for c := _NNClass(0); c < _N_CLASSES; c++ {
		if err := neuralNetSave(&pw.nets[c], pf); err != nil {
			return fmt.Errorf("saving %v net: %w", c, err)
		}
	}
	return nil
}

func weightsSaveBinary(pw *_NNWeights, pf io.Writer) error {
	w := bufio.NewWriter(pf)

	if err := binary.Write(w, binary.LittleEndian, [2]float32{_WEIGHTS_MAGIC_BINARY, _WEIGHTS_VERSION_BINARY}); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	for c := _NNClass(0); c < _N_CLASSES; c++ {
		if err := neuralNetSaveBinary(&pw.nets[c], w); err != nil {
			return fmt.Errorf("saving %v net: %w", c, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func weightsDestroy(pw *_NNWeights) {
	for c := range pw.nets {
		neuralNetDestroy(&pw.nets[c])
	}
}

func parseNNClass(s string) (_NNClass, error) {
	for c, name := range nnClassNames {
		if strings.EqualFold(s, name) {
			return _NNClass(c), nil
		}
	}
	return -1, fmt.Errorf("%w: unknown net %q", ErrInvalidArgument, s)
}
