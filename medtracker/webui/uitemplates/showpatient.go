package uitemplates

type ShowPatientParams struct {
	ActiveUser ActiveUserParams

	PatientID       string
	Name            string
	Email           string
	PhoneNumber     string
	Age             string
	Gender          string
	SelfLink        string
	AddMedicineLink string

	Medicines []ShowPatientMedicine
	Intakes   []ShowPatientIntake

	UserError string
}

type ShowPatientMedicine struct {
	ID           string
	Name         string
	Dose         string
	Times        string
	Remaining    int64
	Total        int64
	Instructions string
	DoctorNote   string
	HungerStatus string
	Active       bool
	AudioURL     string
	EditLink     string
}

type ShowPatientIntake struct {
	MedicineName string
	TakenAt      string
	Status       string
}

var showPatientText = `
{{define "title"}}Hasta: {{.Name}}{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/yonetim">Panel</a></li>
<li class="breadcrumb-item"><a href="/yonetim/hastalar">Hastalar</a></li>
<li class="breadcrumb-item active" aria-current="page"><a href="{{.SelfLink}}">{{.Name}}</a></li>
{{- end}}

{{define "content"}}
<h1>{{.Name}}</h1>
<p class="text-muted">
  {{.Email}}
  {{with .PhoneNumber}} · {{.}}{{end}}
  {{with .Age}} · {{.}} yaş{{end}}
  {{with .Gender}} · {{.}}{{end}}
</p>

{{template "usererror" .}}

<div class="d-flex justify-content-between align-items-center mt-4">
  <h2>İlaçlar</h2>
  <a class="btn btn-primary" href="{{.AddMedicineLink}}">İlaç Ekle</a>
</div>
<table class="table">
  <thead>
    <tr>
      <th>İlaç</th>
      <th>Doz</th>
      <th>Saatler</th>
      <th>Kalan / Toplam</th>
      <th>Talimatlar</th>
      <th>Durum</th>
      <th></th>
    </tr>
  </thead>
  <tbody>
    {{range .Medicines}}
    <tr>
      <td>
        {{.Name}}
        {{with .HungerStatus}}<br><small class="text-muted">{{.}}</small>{{end}}
        {{with .AudioURL}}<br><audio controls preload="none" src="{{.}}"></audio>{{end}}
      </td>
      <td>{{.Dose}}</td>
      <td>{{.Times}}</td>
      <td>{{.Remaining}} / {{.Total}}</td>
      <td>
        {{.Instructions}}
        {{with .DoctorNote}}<br><small><strong>Doktor notu:</strong> {{.}}</small>{{end}}
      </td>
      <td>{{if .Active}}<span class="badge bg-success">Aktif</span>{{else}}<span class="badge bg-secondary">Pasif</span>{{end}}</td>
      <td>
        <a class="btn btn-sm btn-outline-primary" href="{{.EditLink}}">Düzenle</a>
        <form method="POST" action="/yonetim/ilac-sil" class="d-inline" onsubmit="return confirm('Bu ilacı silmek istediğinize emin misiniz?');">
          <input type="hidden" name="patient-id" value="{{$.PatientID}}">
          <input type="hidden" name="medicine-id" value="{{.ID}}">
          <button type="submit" class="btn btn-sm btn-outline-danger">Sil</button>
        </form>
      </td>
    </tr>
    {{else}}
    <tr><td colspan="7" class="text-muted">Bu hastaya henüz ilaç eklenmemiş.</td></tr>
    {{end}}
  </tbody>
</table>

<h2 class="mt-4">İlaç Alım Geçmişi</h2>
<table class="table table-sm">
  <thead>
    <tr>
      <th>İlaç</th>
      <th>Alınma Zamanı</th>
      <th>Durum</th>
    </tr>
  </thead>
  <tbody>
    {{range .Intakes}}
    <tr>
      <td>{{.MedicineName}}</td>
      <td>{{.TakenAt}}</td>
      <td>{{.Status}}</td>
    </tr>
    {{else}}
    <tr><td colspan="3" class="text-muted">Kayıt bulunamadı.</td></tr>
    {{end}}
  </tbody>
</table>
{{end}}
`

var ShowPatientTemplate = page(showPatientText)
