package orchestration

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/reporting"
	"github.com/mdlhea/heapp/internal/reporting/mocks"
	"github.com/mdlhea/heapp/internal/store"
)

func writeResults(t *testing.T, n int) string {
	t.Helper()
	w, err := store.Create(t.TempDir(), uuid.NewString())
	require.NoError(t, err)
	for i := range n {
		require.NoError(t, w.Append(descriptor.AlloyResult{
			Name: fmt.Sprintf("Alloy%d", i),
			Descriptors: descriptor.DescriptorSet{
				Density:          7.9,
				VEC:              8,
				CrystalStructure: descriptor.StructureFCC,
				Model1:           descriptor.Label(descriptor.PhaseSS),
				Model2:           descriptor.Label(descriptor.PhaseSS),
				Model3:           descriptor.Label(descriptor.PhaseIM),
				Model4:           descriptor.Label(descriptor.PhaseCoarseMixd),
				Model6:           descriptor.NotApplicable(),
				Model7:           descriptor.AnnotatedLabel(descriptor.PhaseSS, "Tₐₙ: 1500.0 K"),
			},
		}))
	}
	require.NoError(t, w.Close())
	return w.Path()
}

func TestExportStage_ChunkedProgress(t *testing.T) {
	storePath := writeResults(t, 350)

	ctrl := gomock.NewController(t)
	tw := mocks.NewMockTableWriter(ctrl)
	gomock.InOrder(
		tw.EXPECT().WriteHeader(reporting.Headers()).Return(nil),
		tw.EXPECT().WriteRow(gomock.Any()).Return(nil).Times(350),
		tw.EXPECT().Close().Return(nil),
	)

	log := &eventLog{}
	stage := NewExportStage()
	stage.OnProgress(log.listen)

	written, err := stage.ExportTo(context.Background(), storePath, tw, reporting.Headers())
	require.NoError(t, err)
	assert.Equal(t, 350, written)
	assert.Equal(t, StateCompleted, stage.State())

	progress := log.ofType(EventExportProgress)
	require.Len(t, progress, 4)
	for i, want := range []int{100, 200, 300, 350} {
		assert.Equal(t, want, progress[i].Processed)
		assert.Equal(t, 350, progress[i].Total)
	}
	require.Len(t, log.ofType(EventExportComplete), 1)
	assert.FileExists(t, storePath)
}

func TestExportStage_WriteFailureClosesWriter(t *testing.T) {
	storePath := writeResults(t, 150)

	ctrl := gomock.NewController(t)
	tw := mocks.NewMockTableWriter(ctrl)
	boom := errors.New("disk full")
	gomock.InOrder(
		tw.EXPECT().WriteHeader(gomock.Any()).Return(nil),
		tw.EXPECT().WriteRow(gomock.Any()).Return(nil).Times(120),
		tw.EXPECT().WriteRow(gomock.Any()).Return(boom),
		tw.EXPECT().Close().Return(nil),
	)

	log := &eventLog{}
	stage := NewExportStage()
	stage.OnProgress(log.listen)

	written, err := stage.ExportTo(context.Background(), storePath, tw, reporting.Headers())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 100, written)
	assert.Equal(t, StateFailed, stage.State())

	var serr *StageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, StageExport, serr.Stage)
	require.Len(t, log.ofType(EventStageFailed), 1)
	assert.FileExists(t, storePath)
}

func TestExportStage_HeaderMismatch(t *testing.T) {
	storePath := writeResults(t, 1)

	ctrl := gomock.NewController(t)
	tw := mocks.NewMockTableWriter(ctrl)
	tw.EXPECT().Close().Return(nil)

	_, err := NewExportStage().ExportTo(context.Background(), storePath, tw, []string{"Alloy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 16 headers")
}

func TestExportStage_CSV(t *testing.T) {
	storePath := writeResults(t, 250)
	dest := filepath.Join(t.TempDir(), "out.csv")

	stage := NewExportStage(WithChunkSize(64), WithConsumeStore())
	path, err := stage.Export(context.Background(), storePath, dest, reporting.Headers())
	require.NoError(t, err)
	assert.Equal(t, dest, path)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 251)
	assert.Equal(t, reporting.Headers(), records[0])
	assert.Equal(t, "Alloy0", records[1][0])
	assert.Equal(t, "Alloy249", records[250][0])

	assert.NoFileExists(t, storePath)
}

func TestExportStage_XLSX(t *testing.T) {
	storePath := writeResults(t, 10)
	dest := filepath.Join(t.TempDir(), "out.xlsx")

	_, err := NewExportStage().Export(context.Background(), storePath, dest, reporting.Headers())
	require.NoError(t, err)
	assert.FileExists(t, dest)
	assert.FileExists(t, storePath)
}

func TestExportStage_CancelledRemovesDestination(t *testing.T) {
	storePath := writeResults(t, 300)
	dest := filepath.Join(t.TempDir(), "out.csv")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stage := NewExportStage()
	stage.OnProgress(func(e ProgressEvent) {
		if e.EventType == EventExportProgress && e.Processed == 100 {
			cancel()
		}
	})

	_, err := stage.Export(ctx, storePath, dest, reporting.Headers())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateCancelled, stage.State())
	assert.NoFileExists(t, dest)
	assert.FileExists(t, storePath)
}

func TestExportStage_UnknownFormat(t *testing.T) {
	storePath := writeResults(t, 1)
	dest := filepath.Join(t.TempDir(), "out.pdf")
	log := &eventLog{}
	stage := NewExportStage()
	stage.OnProgress(log.listen)

	_, err := stage.Export(context.Background(), storePath, dest, reporting.Headers())
	require.ErrorContains(t, err, "unsupported export extension")
	var serr *StageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, dest, serr.Path)
	assert.Equal(t, StateFailed, stage.State())
	assert.NoFileExists(t, dest)
	assert.FileExists(t, storePath)

	failed := log.ofType(EventStageFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, StageExport, failed[0].Stage)
	assert.Equal(t, dest, failed[0].Path)
	assert.Empty(t, log.ofType(EventExportStart))
}

func TestExportStage_MissingStore(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	_, err := NewExportStage().Export(context.Background(), filepath.Join(t.TempDir(), "missing"+store.Ext), dest, reporting.Headers())
	require.Error(t, err)
	assert.NoFileExists(t, dest)
}
