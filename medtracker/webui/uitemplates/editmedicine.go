package uitemplates

type EditMedicineParams struct {
	ActiveUser ActiveUserParams

	// Adding is true on the add form and false on the edit form.
	Adding bool

	PatientID       string
	MedicineID      string
	PatientName     string
	ShowPatientLink string
	SelfLink        string

	Name              string
	Dose              string
	Times             []string
	TotalQuantity     string
	RemainingQuantity string
	Instructions      string
	DoctorNote        string
	HungerStatus      string
	Active            bool

	DoctorNoteLimit int

	UserError string
}

var editMedicineText = `
{{define "title"}}{{if .Adding}}İlaç Ekle{{else}}İlaç Düzenle{{end}}{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/yonetim">Panel</a></li>
<li class="breadcrumb-item"><a href="/yonetim/hastalar">Hastalar</a></li>
<li class="breadcrumb-item"><a href="{{.ShowPatientLink}}">{{.PatientName}}</a></li>
<li class="breadcrumb-item active" aria-current="page"><a href="{{.SelfLink}}">{{if .Adding}}İlaç Ekle{{else}}İlaç Düzenle{{end}}</a></li>
{{- end}}

{{define "content"}}
<h1>{{if .Adding}}Yeni İlaç Ekle{{else}}İlacı Düzenle{{end}}: {{.PatientName}}</h1>

{{template "usererror" .}}

<form method="POST" action="{{.SelfLink}}">
  <div class="mb-3">
    <label for="name" class="form-label">İlaç Adı</label>
    <input id="name" type="text" name="name" value="{{.Name}}" class="form-control" placeholder="Örn: Parol" required>
  </div>

  <div class="mb-3">
    <label for="dose" class="form-label">Doz (mg, ml vb.)</label>
    <input id="dose" type="text" name="dose" value="{{.Dose}}" class="form-control" placeholder="Örn: 500mg" required>
  </div>

  <div class="row mb-3">
    <div class="col">
      <label for="total-quantity" class="form-label">Toplam Adet</label>
      <input id="total-quantity" type="number" min="0" name="total-quantity" value="{{.TotalQuantity}}" class="form-control" required>
    </div>
    <div class="col">
      <label for="remaining-quantity" class="form-label">Kalan Adet</label>
      <input id="remaining-quantity" type="number" min="0" name="remaining-quantity" value="{{.RemainingQuantity}}" class="form-control" required>
    </div>
  </div>

  <div class="mb-3">
    <label class="form-label">Saatler</label>
    {{range .Times}}
    <input type="time" name="times" value="{{.}}" class="form-control mb-2">
    {{end}}
    <div class="form-text">Boş bırakılan saatler kaydedilmez.</div>
  </div>

  <div class="mb-3">
    <label for="hunger-status" class="form-label">Açlık Durumu</label>
    <input id="hunger-status" type="text" name="hunger-status" value="{{.HungerStatus}}" class="form-control" list="hunger-status-options">
    <datalist id="hunger-status-options">
      <option value="Aç Karnına">
      <option value="Tok Karnına">
    </datalist>
  </div>

  <div class="mb-3">
    <label for="instructions" class="form-label">Talimatlar</label>
    <textarea id="instructions" name="instructions" class="form-control" rows="2" placeholder="Örn: Tok karnına bol su ile">{{.Instructions}}</textarea>
  </div>

  <div class="mb-3">
    <label for="doctor-note" class="form-label">Doktor Notu</label>
    <textarea id="doctor-note" name="doctor-note" class="form-control" rows="3" maxlength="{{.DoctorNoteLimit}}">{{.DoctorNote}}</textarea>
    <div class="form-text">En fazla {{.DoctorNoteLimit}} karakter.</div>
  </div>

  <div class="form-check mb-3">
    <input id="active" type="checkbox" name="active" value="true" class="form-check-input" {{if .Active}}checked{{end}}>
    <label for="active" class="form-check-label">Aktif</label>
  </div>

  <a class="btn btn-secondary" href="{{.ShowPatientLink}}">İptal</a>
  <button type="submit" class="btn btn-primary">{{if .Adding}}Ekle{{else}}Kaydet{{end}}</button>
</form>
{{end}}
`

var EditMedicineTemplate = page(editMedicineText)
