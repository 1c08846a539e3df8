package backend

import (
	"github.com/halvorsen/scriptor/internal/tdt"
	ort "github.com/yalue/onnxruntime_go"
)

// onnxMelStage wraps a single ONNX graph producing a mel spectrogram from
// padded raw samples, matching the Mel row of the neural pipeline's
// fixed external shapes.
type onnxMelStage struct {
	sess     *ort.AdvancedSession
	in       *ort.Tensor[float32]
	validLen *ort.Tensor[int64]
	out      *ort.Tensor[float32]
	validOut *ort.Tensor[int64]
}

func newOnnxMelStage(path string) (*onnxMelStage, error) {
	in, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.MaxRawSamples))
	if err != nil {
		return nil, err
	}
	validLen, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		in.Destroy()
		return nil, err
	}
	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.MelBins, tdt.MelFrames))
	if err != nil {
		in.Destroy()
		validLen.Destroy()
		return nil, err
	}
	validOut, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		in.Destroy()
		validLen.Destroy()
		out.Destroy()
		return nil, err
	}

	inInfo, outInfo, err := ort.GetInputOutputInfo(path)
	if err != nil {
		in.Destroy()
		validLen.Destroy()
		out.Destroy()
		validOut.Destroy()
		return nil, err
	}
	sess, err := ort.NewAdvancedSession(path,
		[]string{inInfo[0].Name, inInfo[1].Name},
		[]string{outInfo[0].Name, outInfo[1].Name},
		[]ort.Value{in, validLen}, []ort.Value{out, validOut}, nil)
	if err != nil {
		in.Destroy()
		validLen.Destroy()
		out.Destroy()
		validOut.Destroy()
		return nil, err
	}

	return &onnxMelStage{sess: sess, in: in, validLen: validLen, out: out, validOut: validOut}, nil
}

func (s *onnxMelStage) Run(paddedSamples []float32, validLen int) (tdt.MelOutput, error) {
	copy(s.in.GetData(), paddedSamples)
	s.validLen.GetData()[0] = int64(validLen)

	if err := s.sess.Run(); err != nil {
		return tdt.MelOutput{}, err
	}

	data := make([]float32, len(s.out.GetData()))
	copy(data, s.out.GetData())
	frames := int(s.validOut.GetData()[0])
	return tdt.MelOutput{Data: data, ValidFrames: frames}, nil
}

func (s *onnxMelStage) Close() {
	s.sess.Destroy()
	s.in.Destroy()
	s.validLen.Destroy()
	s.out.Destroy()
	s.validOut.Destroy()
}

// onnxEncoderStage wraps the encoder graph.
type onnxEncoderStage struct {
	sess     *ort.AdvancedSession
	mel      *ort.Tensor[float32]
	validIn  *ort.Tensor[int64]
	out      *ort.Tensor[float32]
	validOut *ort.Tensor[int64]
}

func newOnnxEncoderStage(path string) (*onnxEncoderStage, error) {
	mel, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.MelBins, tdt.MelFrames))
	if err != nil {
		return nil, err
	}
	validIn, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		mel.Destroy()
		return nil, err
	}
	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.EncoderDim, tdt.EncoderMaxSteps))
	if err != nil {
		mel.Destroy()
		validIn.Destroy()
		return nil, err
	}
	validOut, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		mel.Destroy()
		validIn.Destroy()
		out.Destroy()
		return nil, err
	}

	inInfo, outInfo, err := ort.GetInputOutputInfo(path)
	if err != nil {
		mel.Destroy()
		validIn.Destroy()
		out.Destroy()
		validOut.Destroy()
		return nil, err
	}
	sess, err := ort.NewAdvancedSession(path,
		[]string{inInfo[0].Name, inInfo[1].Name},
		[]string{outInfo[0].Name, outInfo[1].Name},
		[]ort.Value{mel, validIn}, []ort.Value{out, validOut}, nil)
	if err != nil {
		mel.Destroy()
		validIn.Destroy()
		out.Destroy()
		validOut.Destroy()
		return nil, err
	}

	return &onnxEncoderStage{sess: sess, mel: mel, validIn: validIn, out: out, validOut: validOut}, nil
}

func (s *onnxEncoderStage) Run(mel tdt.MelOutput) (tdt.EncoderOutput, error) {
	copy(s.mel.GetData(), mel.Data)
	s.validIn.GetData()[0] = int64(mel.ValidFrames)

	if err := s.sess.Run(); err != nil {
		return tdt.EncoderOutput{}, err
	}

	data := make([]float32, len(s.out.GetData()))
	copy(data, s.out.GetData())
	steps := int(s.validOut.GetData()[0])
	return tdt.EncoderOutput{Data: data, ValidTimeSteps: steps}, nil
}

func (s *onnxEncoderStage) Close() {
	s.sess.Destroy()
	s.mel.Destroy()
	s.validIn.Destroy()
	s.out.Destroy()
	s.validOut.Destroy()
}

// splitDecoderJointStage implements tdt.DecoderJointStage over two
// independent graphs (decoder then joint), for backends whose model
// directory ships them as separate files.
type splitDecoderJointStage struct {
	decSess *ort.AdvancedSession
	decTok  *ort.Tensor[int64]
	decHIn  *ort.Tensor[float32]
	decCIn  *ort.Tensor[float32]
	decProj *ort.Tensor[float32]
	decHOut *ort.Tensor[float32]
	decCOut *ort.Tensor[float32]

	jointSess  *ort.AdvancedSession
	jointFrame *ort.Tensor[float32]
	jointProj  *ort.Tensor[float32]
	jointOut   *ort.Tensor[float32]
}

func newSplitDecoderJointStage(decoderPath, jointPath string) (*splitDecoderJointStage, error) {
	decTok, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return nil, err
	}
	decHIn, err := ort.NewEmptyTensor[float32](ort.NewShape(tdt.LSTMLayers, tdt.DecoderHidden))
	if err != nil {
		decTok.Destroy()
		return nil, err
	}
	decCIn, err := ort.NewEmptyTensor[float32](ort.NewShape(tdt.LSTMLayers, tdt.DecoderHidden))
	if err != nil {
		decTok.Destroy()
		decHIn.Destroy()
		return nil, err
	}
	decProj, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.DecoderHidden))
	if err != nil {
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		return nil, err
	}
	decHOut, err := ort.NewEmptyTensor[float32](ort.NewShape(tdt.LSTMLayers, tdt.DecoderHidden))
	if err != nil {
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		return nil, err
	}
	decCOut, err := ort.NewEmptyTensor[float32](ort.NewShape(tdt.LSTMLayers, tdt.DecoderHidden))
	if err != nil {
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		decHOut.Destroy()
		return nil, err
	}

	decInInfo, decOutInfo, err := ort.GetInputOutputInfo(decoderPath)
	if err != nil {
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		decHOut.Destroy()
		decCOut.Destroy()
		return nil, err
	}
	decSess, err := ort.NewAdvancedSession(decoderPath,
		[]string{decInInfo[0].Name, decInInfo[1].Name, decInInfo[2].Name},
		[]string{decOutInfo[0].Name, decOutInfo[1].Name, decOutInfo[2].Name},
		[]ort.Value{decTok, decHIn, decCIn}, []ort.Value{decProj, decHOut, decCOut}, nil)
	if err != nil {
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		decHOut.Destroy()
		decCOut.Destroy()
		return nil, err
	}

	jointFrame, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.EncoderDim))
	if err != nil {
		decSess.Destroy()
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		decHOut.Destroy()
		decCOut.Destroy()
		return nil, err
	}
	jointProj, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.DecoderHidden))
	if err != nil {
		decSess.Destroy()
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		decHOut.Destroy()
		decCOut.Destroy()
		jointFrame.Destroy()
		return nil, err
	}
	jointOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.VocabSize+tdt.DurationClasses))
	if err != nil {
		decSess.Destroy()
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		decHOut.Destroy()
		decCOut.Destroy()
		jointFrame.Destroy()
		jointProj.Destroy()
		return nil, err
	}

	jointInInfo, jointOutInfo, err := ort.GetInputOutputInfo(jointPath)
	if err != nil {
		decSess.Destroy()
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		decHOut.Destroy()
		decCOut.Destroy()
		jointFrame.Destroy()
		jointProj.Destroy()
		jointOut.Destroy()
		return nil, err
	}
	jointSess, err := ort.NewAdvancedSession(jointPath,
		[]string{jointInInfo[0].Name, jointInInfo[1].Name},
		[]string{jointOutInfo[0].Name},
		[]ort.Value{jointFrame, jointProj}, []ort.Value{jointOut}, nil)
	if err != nil {
		decSess.Destroy()
		decTok.Destroy()
		decHIn.Destroy()
		decCIn.Destroy()
		decProj.Destroy()
		decHOut.Destroy()
		decCOut.Destroy()
		jointFrame.Destroy()
		jointProj.Destroy()
		jointOut.Destroy()
		return nil, err
	}

	return &splitDecoderJointStage{
		decSess: decSess, decTok: decTok, decHIn: decHIn, decCIn: decCIn,
		decProj: decProj, decHOut: decHOut, decCOut: decCOut,
		jointSess: jointSess, jointFrame: jointFrame, jointProj: jointProj, jointOut: jointOut,
	}, nil
}

func (s *splitDecoderJointStage) Run(tokenID int, state tdt.LSTMState, encoderFrame []float32) ([]float32, tdt.LSTMState, error) {
	s.decTok.GetData()[0] = int64(tokenID)
	copy(s.decHIn.GetData(), state.H)
	copy(s.decCIn.GetData(), state.C)
	if err := s.decSess.Run(); err != nil {
		return nil, tdt.LSTMState{}, err
	}

	copy(s.jointFrame.GetData(), encoderFrame)
	copy(s.jointProj.GetData(), s.decProj.GetData())
	if err := s.jointSess.Run(); err != nil {
		return nil, tdt.LSTMState{}, err
	}

	logits := make([]float32, len(s.jointOut.GetData()))
	copy(logits, s.jointOut.GetData())

	next := tdt.LSTMState{
		H: append([]float32{}, s.decHOut.GetData()...),
		C: append([]float32{}, s.decCOut.GetData()...),
	}
	return logits, next, nil
}

func (s *splitDecoderJointStage) Close() {
	s.decSess.Destroy()
	s.decTok.Destroy()
	s.decHIn.Destroy()
	s.decCIn.Destroy()
	s.decProj.Destroy()
	s.decHOut.Destroy()
	s.decCOut.Destroy()
	s.jointSess.Destroy()
	s.jointFrame.Destroy()
	s.jointProj.Destroy()
	s.jointOut.Destroy()
}

// fusedDecoderJointStage implements tdt.DecoderJointStage over a single
// combined decoder_joint graph, for backends that ship the fused model.
type fusedDecoderJointStage struct {
	sess  *ort.AdvancedSession
	tok   *ort.Tensor[int64]
	hIn   *ort.Tensor[float32]
	cIn   *ort.Tensor[float32]
	frame *ort.Tensor[float32]
	out   *ort.Tensor[float32]
	hOut  *ort.Tensor[float32]
	cOut  *ort.Tensor[float32]
}

func newFusedDecoderJointStage(path string) (*fusedDecoderJointStage, error) {
	tok, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return nil, err
	}
	hIn, err := ort.NewEmptyTensor[float32](ort.NewShape(tdt.LSTMLayers, tdt.DecoderHidden))
	if err != nil {
		tok.Destroy()
		return nil, err
	}
	cIn, err := ort.NewEmptyTensor[float32](ort.NewShape(tdt.LSTMLayers, tdt.DecoderHidden))
	if err != nil {
		tok.Destroy()
		hIn.Destroy()
		return nil, err
	}
	frame, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.EncoderDim))
	if err != nil {
		tok.Destroy()
		hIn.Destroy()
		cIn.Destroy()
		return nil, err
	}
	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, tdt.VocabSize+tdt.DurationClasses))
	if err != nil {
		tok.Destroy()
		hIn.Destroy()
		cIn.Destroy()
		frame.Destroy()
		return nil, err
	}
	hOut, err := ort.NewEmptyTensor[float32](ort.NewShape(tdt.LSTMLayers, tdt.DecoderHidden))
	if err != nil {
		tok.Destroy()
		hIn.Destroy()
		cIn.Destroy()
		frame.Destroy()
		out.Destroy()
		return nil, err
	}
	cOut, err := ort.NewEmptyTensor[float32](ort.NewShape(tdt.LSTMLayers, tdt.DecoderHidden))
	if err != nil {
		tok.Destroy()
		hIn.Destroy()
		cIn.Destroy()
		frame.Destroy()
		out.Destroy()
		hOut.Destroy()
		return nil, err
	}

	inInfo, outInfo, err := ort.GetInputOutputInfo(path)
	if err != nil {
		tok.Destroy()
		hIn.Destroy()
		cIn.Destroy()
		frame.Destroy()
		out.Destroy()
		hOut.Destroy()
		cOut.Destroy()
		return nil, err
	}
	sess, err := ort.NewAdvancedSession(path,
		[]string{inInfo[0].Name, inInfo[1].Name, inInfo[2].Name, inInfo[3].Name},
		[]string{outInfo[0].Name, outInfo[1].Name, outInfo[2].Name},
		[]ort.Value{tok, hIn, cIn, frame}, []ort.Value{out, hOut, cOut}, nil)
	if err != nil {
		tok.Destroy()
		hIn.Destroy()
		cIn.Destroy()
		frame.Destroy()
		out.Destroy()
		hOut.Destroy()
		cOut.Destroy()
		return nil, err
	}

	return &fusedDecoderJointStage{sess: sess, tok: tok, hIn: hIn, cIn: cIn, frame: frame, out: out, hOut: hOut, cOut: cOut}, nil
}

func (s *fusedDecoderJointStage) Run(tokenID int, state tdt.LSTMState, encoderFrame []float32) ([]float32, tdt.LSTMState, error) {
	s.tok.GetData()[0] = int64(tokenID)
	copy(s.hIn.GetData(), state.H)
	copy(s.cIn.GetData(), state.C)
	copy(s.frame.GetData(), encoderFrame)

	if err := s.sess.Run(); err != nil {
		return nil, tdt.LSTMState{}, err
	}

	logits := make([]float32, len(s.out.GetData()))
	copy(logits, s.out.GetData())
	next := tdt.LSTMState{
		H: append([]float32{}, s.hOut.GetData()...),
		C: append([]float32{}, s.cOut.GetData()...),
	}
	return logits, next, nil
}

func (s *fusedDecoderJointStage) Close() {
	s.sess.Destroy()
	s.tok.Destroy()
	s.hIn.Destroy()
	s.cIn.Destroy()
	s.frame.Destroy()
	s.out.Destroy()
	s.hOut.Destroy()
	s.cOut.Destroy()
}
