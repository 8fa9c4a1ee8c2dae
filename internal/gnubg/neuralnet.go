package gnubg

import (
	"bgeval/internal/gnubg/sigmoid"
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
)

type _NeuralNet struct {
	cInput            int
	cHidden           int
	cOutput           int
	nTrained          int
	rBetaHidden       float32
	rBetaOutput       float32
	arHiddenWeight    []float32 /* input major: [i*cHidden+h] */
	arOutputWeight    []float32 /* output major: [o*cHidden+h] */
	arHiddenThreshold []float32
	arOutputThreshold []float32
}

/* largest buffer neuralNetCreate will allocate, in elements */
const _MAX_NN_BUFFER = 1 << 26

type _NNEvalType int

const (
	_NNEVAL_NONE _NNEvalType = iota
	_NNEVAL_SAVE
	_NNEVAL_FROMBASE
)

type _NNStateType int

const (
	_NNSTATE_NONE _NNStateType = iota - 1
	_NNSTATE_INCREMENTAL
	_NNSTATE_DONE
)

type _NNState struct {
	state       _NNStateType
	savedBase   []float32
	savedIBase  []float32
	cSavedIBase int
}

// full forward pass; saveAr, when not nil, receives the pre-sigmoid hidden activations
type _FullEvalFunc func(pnn *_NeuralNet, arInput []float32, ar []float32, arOutput []float32, saveAr []float32)

var evaluateFull _FullEvalFunc = evaluate

func neuralNetCreate(pnn *_NeuralNet, cInput int, cHidden int, cOutput int, rBetaHidden float32, rBetaOutput float32) (err error) {
	if cInput < 1 || cHidden < 1 || cOutput < 1 {
		return fmt.Errorf("%w: net size %dx%dx%d", ErrAllocation, cInput, cHidden, cOutput)
	}
	if int64(cInput)*int64(cHidden) > _MAX_NN_BUFFER || int64(cOutput)*int64(cHidden) > _MAX_NN_BUFFER {
		return fmt.Errorf("%w: net size %dx%dx%d too large", ErrAllocation, cInput, cHidden, cOutput)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()

	arHiddenWeight := make([]float32, cHidden*cInput)
	arOutputWeight := make([]float32, cOutput*cHidden)
	arHiddenThreshold := make([]float32, cHidden)
	arOutputThreshold := make([]float32, cOutput)

	*pnn = _NeuralNet{
		cInput:            cInput,
		cHidden:           cHidden,
		cOutput:           cOutput,
		rBetaHidden:       rBetaHidden,
		rBetaOutput:       rBetaOutput,
		arHiddenWeight:    arHiddenWeight,
		arOutputWeight:    arOutputWeight,
		arHiddenThreshold: arHiddenThreshold,
		arOutputThreshold: arOutputThreshold,
	}
	return nil
}

func neuralNetDestroy(pnn *_NeuralNet) {
	if pnn == nil {
		return
	}
	*pnn = _NeuralNet{}
}

func (pnn *_NeuralNet) loaded() bool {
	return pnn != nil && pnn.arHiddenWeight != nil
}

func validHeader(cInput, cHidden, cOutput int, rBetaHidden, rBetaOutput float32) bool {
	return cInput >= 1 && cHidden >= 1 && cOutput >= 1 && rBetaHidden > 0.0 && rBetaOutput > 0.0
}

// fmt.Fscan only avoids reading past a token when it can unread runes
func runeScanner(pf io.Reader) io.Reader {
	if _, ok := pf.(io.RuneScanner); ok {
		return pf
	}
	return bufio.NewReader(pf)
}

// neuralNetLoad reads a net in text form. Several nets can be read from the
// same stream as long as it implements io.RuneScanner.
func neuralNetLoad(pnn *_NeuralNet, pf io.Reader) error {
	var nn _NeuralNet
	var dummy string
	var cInput, cHidden, cOutput int
	var rBetaHidden, rBetaOutput float32

	rs := runeScanner(pf)

	if _, err := fmt.Fscan(rs, &cInput, &cHidden, &cOutput, &dummy, &rBetaHidden, &rBetaOutput); err != nil {
		return fmt.Errorf("%w: neural net header: %v", ErrFormat, err)
	}
	if !validHeader(cInput, cHidden, cOutput, rBetaHidden, rBetaOutput) {
		return fmt.Errorf("%w: neural net header %d %d %d %v %v", ErrFormat, cInput, cHidden, cOutput, rBetaHidden, rBetaOutput)
	}

	if err := neuralNetCreate(&nn, cInput, cHidden, cOutput, rBetaHidden, rBetaOutput); err != nil {
		return err
	}

	nn.nTrained = 1

	scan := func(ar []float32, what string) error {
		for i := range ar {
			if _, err := fmt.Fscan(rs, &ar[i]); err != nil {
				return fmt.Errorf("%w: %v %d of %d: %v", ErrTruncatedData, what, i, len(ar), err)
			}
		}
		return nil
	}

	if err := scan(nn.arHiddenWeight, "hidden weight"); err != nil {
		return err
	}
	if err := scan(nn.arOutputWeight, "output weight"); err != nil {
		return err
	}
	if err := scan(nn.arHiddenThreshold, "hidden threshold"); err != nil {
		return err
	}
	if err := scan(nn.arOutputThreshold, "output threshold"); err != nil {
		return err
	}

	*pnn = nn
	return nil
}

func neuralNetSave(pnn *_NeuralNet, pf io.Writer) error {
	if !pnn.loaded() {
		return ErrNotLoaded
	}

	w := bufio.NewWriter(pf)

	fmt.Fprintf(w, "%d %d %d %d %s %s\n", pnn.cInput, pnn.cHidden, pnn.cOutput, pnn.nTrained,
		formatFloat(pnn.rBetaHidden), formatFloat(pnn.rBetaOutput))

	for _, ar := range [][]float32{pnn.arHiddenWeight, pnn.arOutputWeight, pnn.arHiddenThreshold, pnn.arOutputThreshold} {
		for _, r := range ar {
			w.WriteString(formatFloat(r))
			w.WriteByte('\n')
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func formatFloat(r float32) string {
	return strconv.FormatFloat(float64(r), 'g', -1, 32)
}

type _NNBinaryHeader struct {
	CInput      int32
	CHidden     int32
	COutput     int32
	NTrained    int32
	RBetaHidden float32
	RBetaOutput float32
}

func neuralNetLoadBinary(pnn *_NeuralNet, pf io.Reader) error {
	var nn _NeuralNet
	var hdr _NNBinaryHeader

	if err := binary.Read(pf, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("%w: neural net header: %v", readError(err), err)
	}
	if !validHeader(int(hdr.CInput), int(hdr.CHidden), int(hdr.COutput), hdr.RBetaHidden, hdr.RBetaOutput) {
		return fmt.Errorf("%w: neural net header %+v", ErrFormat, hdr)
	}

	if err := neuralNetCreate(&nn, int(hdr.CInput), int(hdr.CHidden), int(hdr.COutput), hdr.RBetaHidden, hdr.RBetaOutput); err != nil {
		return err
	}

	nn.nTrained = int(hdr.NTrained)

	for _, ar := range [][]float32{nn.arHiddenWeight, nn.arOutputWeight, nn.arHiddenThreshold, nn.arOutputThreshold} {
		if err := binary.Read(pf, binary.LittleEndian, ar); err != nil {
			return fmt.Errorf("%w: neural net weights: %v", readError(err), err)
		}
	}

	*pnn = nn
	return nil
}

func readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedData
	}
	return ErrIO
}

func neuralNetSaveBinary(pnn *_NeuralNet, pf io.Writer) error {
	if !pnn.loaded() {
		return ErrNotLoaded
	}

	hdr := _NNBinaryHeader{
		CInput:      int32(pnn.cInput),
		CHidden:     int32(pnn.cHidden),
		COutput:     int32(pnn.cOutput),
		NTrained:    int32(pnn.nTrained),
		RBetaHidden: pnn.rBetaHidden,
		RBetaOutput: pnn.rBetaOutput,
	}

	if err := binary.Write(pf, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	for _, ar := range [][]float32{pnn.arHiddenWeight, pnn.arOutputWeight, pnn.arHiddenThreshold, pnn.arOutputThreshold} {
		if err := binary.Write(pf, binary.LittleEndian, ar); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	return nil
}

func neuralNetEvaluate(pnn *_NeuralNet, arInput []float32, arOutput []float32, pnState *_NNState) error {
	if !pnn.loaded() {
		return ErrNotLoaded
	}
	if len(arInput) != pnn.cInput {
		return fmt.Errorf("%w: %d inputs, net expects %d", ErrDimensionMismatch, len(arInput), pnn.cInput)
	}
	if len(arOutput) < pnn.cOutput {
		return fmt.Errorf("%w: room for %d outputs, net has %d", ErrDimensionMismatch, len(arOutput), pnn.cOutput)
	}

	ar := make([]float32, pnn.cHidden)

	switch _NNevalAction(pnState) {
	case _NNEVAL_NONE:
		evaluateFull(pnn, arInput, ar, arOutput, nil)

	case _NNEVAL_SAVE:
		pnState.cSavedIBase = pnn.cInput
		pnState.savedBase = resize(pnState.savedBase, pnn.cHidden)
		pnState.savedIBase = resize(pnState.savedIBase, pnn.cInput)
		copy(pnState.savedIBase, arInput)
		evaluateFull(pnn, arInput, ar, arOutput, pnState.savedBase)

	case _NNEVAL_FROMBASE:
		if pnState.cSavedIBase != pnn.cInput || len(pnState.savedBase) != pnn.cHidden {
			evaluateFull(pnn, arInput, ar, arOutput, nil)
			break
		}
		copy(ar, pnState.savedBase)

		dif := make([]float32, pnn.cInput)
		for i, r := range arInput {
			if s := pnState.savedIBase[i]; r != s {
				dif[i] = r - s
			}
		}

		evaluateFromBase(pnn, dif, ar, arOutput)
	}

	return nil
}

func resize(ar []float32, n int) []float32 {
	if cap(ar) < n {
		return make([]float32, n)
	}
	return ar[:n]
}

/* separate context for race, crashed, contact
 * -1: regular eval
 * 0: save base
 * 1: from base
 */
func _NNevalAction(pnState *_NNState) _NNEvalType {
	if pnState == nil {
		return _NNEVAL_NONE
	}
	switch pnState.state {
	case _NNSTATE_NONE:
		/* incremental evaluation not useful */
		return _NNEVAL_NONE
	case _NNSTATE_INCREMENTAL:
		/* next call should return FROMBASE */
		pnState.state = _NNSTATE_DONE

		/* starting a new context; save base in the hope it will be useful */
		return _NNEVAL_SAVE
	case _NNSTATE_DONE:
		/* context hit!  use the previously computed base */
		return _NNEVAL_FROMBASE
	}
	panic(fmt.Sprintf("invalid evaluation state %d", pnState.state))
}

func evaluate(pnn *_NeuralNet, arInput []float32, ar []float32, arOutput []float32, saveAr []float32) {
	cHidden := pnn.cHidden

	/* Calculate activity at hidden nodes */
	copy(ar, pnn.arHiddenThreshold)

	for i, ari := range arInput {
		if ari == 0.0 {
			continue
		}
		prWeight := pnn.arHiddenWeight[i*cHidden : (i+1)*cHidden]

		if ari == 1.0 {
			for j, w := range prWeight {
				ar[j] += w
			}
		} else {
			for j, w := range prWeight {
				ar[j] += w * ari
			}
		}
	}

	if saveAr != nil {
		copy(saveAr, ar)
	}

	evaluateOutputs(pnn, ar, arOutput)
}

// ar holds the pre-sigmoid hidden activations of the saved base
func evaluateFromBase(pnn *_NeuralNet, arInputDif []float32, ar []float32, arOutput []float32) {
	cHidden := pnn.cHidden

	for i, ari := range arInputDif {
		if ari == 0.0 {
			continue
		}
		prWeight := pnn.arHiddenWeight[i*cHidden : (i+1)*cHidden]

		switch ari {
		case 1.0:
			for j, w := range prWeight {
				ar[j] += w
			}
		case -1.0:
			for j, w := range prWeight {
				ar[j] -= w
			}
		default:
			for j, w := range prWeight {
				ar[j] += w * ari
			}
		}
	}

	evaluateOutputs(pnn, ar, arOutput)
}

func evaluateOutputs(pnn *_NeuralNet, ar []float32, arOutput []float32) {
	cHidden := pnn.cHidden

	for i := 0; i < cHidden; i++ {
		ar[i] = sigmoid.Sigmoid(-pnn.rBetaHidden * ar[i])
	}

	/* Calculate activity at output nodes */
	for i := 0; i < pnn.cOutput; i++ {
		r := pnn.arOutputThreshold[i]
		for j, w := range pnn.arOutputWeight[i*cHidden : (i+1)*cHidden] {
			r += ar[j] * w
		}
		arOutput[i] = sigmoid.Sigmoid(-pnn.rBetaOutput * r)
	}
}
